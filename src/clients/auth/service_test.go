package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"analytics-sync/src/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(authority string) *TokenProvider {
	return &TokenProvider{
		Authority:    authority,
		Scope:        "https://api.businesscentral.dynamics.com/.default",
		clientSecret: "test-secret",
		cache:        map[uuid.UUID]cachedToken{},
		client:       &http.Client{},
		now:          time.Now,
	}
}

func tokenHandler(t *testing.T, requests *int, token string, expiresIn int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*requests++

		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "test-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "https://api.businesscentral.dynamics.com/.default", r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
		})
	}
}

func TestGetToken(t *testing.T) {
	ctx := context.Background()
	directoryTenantID := uuid.New()
	clientID := uuid.New()

	t.Run("acquires a token via the client credentials grant", func(t *testing.T) {
		requests := 0
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			tokenHandler(t, &requests, "token-abc", 3600)(w, r)
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		token, err := provider.GetToken(ctx, directoryTenantID, clientID)
		require.NoError(t, err)
		assert.Equal(t, "token-abc", token)
		assert.Equal(t, fmt.Sprintf("/%s/oauth2/v2.0/token", directoryTenantID), gotPath)
	})

	t.Run("serves repeated calls from the cache", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(tokenHandler(t, &requests, "token-abc", 3600))
		defer server.Close()

		provider := newTestProvider(server.URL)
		for i := 0; i < 3; i++ {
			token, err := provider.GetToken(ctx, directoryTenantID, clientID)
			require.NoError(t, err)
			assert.Equal(t, "token-abc", token)
		}
		assert.Equal(t, 1, requests)
	})

	t.Run("refreshes when the cached token nears expiry", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(tokenHandler(t, &requests, "token-abc", 3600))
		defer server.Close()

		current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
		provider := newTestProvider(server.URL)
		provider.now = func() time.Time { return current }

		_, err := provider.GetToken(ctx, directoryTenantID, clientID)
		require.NoError(t, err)
		require.Equal(t, 1, requests)

		// Still comfortably inside the token's lifetime.
		current = current.Add(30 * time.Minute)
		_, err = provider.GetToken(ctx, directoryTenantID, clientID)
		require.NoError(t, err)
		assert.Equal(t, 1, requests)

		// Within the safety margin of expiry.
		current = current.Add(29*time.Minute + 30*time.Second)
		_, err = provider.GetToken(ctx, directoryTenantID, clientID)
		require.NoError(t, err)
		assert.Equal(t, 2, requests)
	})

	t.Run("caches per client id", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(tokenHandler(t, &requests, "token-abc", 3600))
		defer server.Close()

		provider := newTestProvider(server.URL)
		_, err := provider.GetToken(ctx, directoryTenantID, clientID)
		require.NoError(t, err)
		_, err = provider.GetToken(ctx, directoryTenantID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 2, requests)
	})

	t.Run("returns an auth error on a non-ok response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		_, err := provider.GetToken(ctx, directoryTenantID, clientID)
		require.Error(t, err)
		var authErr *utils.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Message, "401")
		assert.Contains(t, authErr.Message, "invalid_client")
	})

	t.Run("returns an auth error when the response has no access token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		_, err := provider.GetToken(ctx, directoryTenantID, clientID)
		require.Error(t, err)
		var authErr *utils.AuthError
		assert.ErrorAs(t, err, &authErr)
	})
}
