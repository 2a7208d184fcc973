package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"analytics-sync/src/config"
	"analytics-sync/src/utils"

	"github.com/google/uuid"
)

// tokenExpiryMargin keeps a token from being handed out so close to expiry
// that it dies mid-fetch.
const tokenExpiryMargin = 60 * time.Second

type TokenProviderI interface {
	GetToken(ctx context.Context, directoryTenantID, clientID uuid.UUID) (string, error)
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// TokenProvider acquires client-credentials bearer tokens and caches them
// per application client id. Not safe for concurrent use: the orchestrator
// runs scopes sequentially, so a refresh race cannot occur in practice.
type TokenProvider struct {
	Authority    string
	Scope        string
	clientSecret string

	cache  map[uuid.UUID]cachedToken
	client *http.Client
	now    func() time.Time
}

// NewTokenProvider creates a provider from already-validated configuration.
// The client secret is passed in explicitly so secret resolution (env vs
// Secrets Manager) stays with the bootstrap.
func NewTokenProvider(cfg *config.Config, clientSecret string) *TokenProvider {
	return &TokenProvider{
		Authority:    cfg.ExternalClients.AzureAD.Authority,
		Scope:        cfg.ExternalClients.AzureAD.Scope,
		clientSecret: clientSecret,
		cache:        map[uuid.UUID]cachedToken{},
		client:       &http.Client{},
		now:          time.Now,
	}
}

// GetToken returns a cached token when its expiry is more than the safety
// margin away, otherwise performs a client-credentials grant against the
// directory tenant's token endpoint.
func (s *TokenProvider) GetToken(ctx context.Context, directoryTenantID, clientID uuid.UUID) (string, error) {
	logger := utils.LoggerFromContext(ctx)

	if cached, ok := s.cache[clientID]; ok && cached.expiresAt.After(s.now().Add(tokenExpiryMargin)) {
		logger.WithField("clientId", clientID).Debug("Using cached token")
		return cached.accessToken, nil
	}

	logger.WithField("clientId", clientID).Info("Fetching new OAuth token")

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", clientID.String())
	data.Set("client_secret", s.clientSecret)
	data.Set("scope", s.Scope)

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", s.Authority, directoryTenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewBufferString(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", utils.NewAuthError("token request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.NewAuthError("reading token response failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", utils.NewAuthError("token request failed | Status Code: %d | Response: %s", resp.StatusCode, string(body))
	}

	var tokenResponse TokenResponse
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return "", utils.NewAuthError("invalid token response: %v", err)
	}
	if tokenResponse.AccessToken == "" {
		return "", utils.NewAuthError("token response missing access_token")
	}

	s.cache[clientID] = cachedToken{
		accessToken: tokenResponse.AccessToken,
		expiresAt:   s.now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second),
	}

	logger.WithField("expiresIn", tokenResponse.ExpiresIn).Info("Token acquired")
	return tokenResponse.AccessToken, nil
}
