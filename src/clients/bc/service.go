package bc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"analytics-sync/src/config"
	"analytics-sync/src/models"
	"analytics-sync/src/utils"
)

// Source API endpoint names for the four record kinds.
const (
	EndpointGLAccounts          = "glAccounts"
	EndpointGLEntries           = "glEntries"
	EndpointDimensionSetEntries = "dimensionSetEntries"
	EndpointGLBudgetEntries     = "glBudgetEntries"
)

type BCServiceClientI interface {
	GetGLAccounts(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.GLAccount, error)
	GetGLEntries(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.GLEntry, error)
	GetDimensionSetEntries(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.DimensionSetEntry, error)
	GetGLBudgetEntries(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.GLBudgetEntry, error)
}

// BCServiceClient walks the source system's cursor-linked paginated company
// endpoints. MaxPages bounds a misbehaving API that keeps returning a next
// link forever.
type BCServiceClient struct {
	BaseURL  string
	APIPath  string
	MaxPages int

	client *http.Client
}

func NewClient(cfg *config.Config) *BCServiceClient {
	return &BCServiceClient{
		BaseURL:  cfg.ExternalClients.BusinessCentral.BaseURL,
		APIPath:  cfg.ExternalClients.BusinessCentral.APIPath,
		MaxPages: cfg.ExternalClients.BusinessCentral.MaxPages,
		client:   &http.Client{},
	}
}

func (s *BCServiceClient) GetGLAccounts(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.GLAccount, error) {
	return fetchAll[models.GLAccount](ctx, s, token, s.companyURL(env, EndpointGLAccounts), since)
}

func (s *BCServiceClient) GetGLEntries(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.GLEntry, error) {
	return fetchAll[models.GLEntry](ctx, s, token, s.companyURL(env, EndpointGLEntries), since)
}

func (s *BCServiceClient) GetDimensionSetEntries(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.DimensionSetEntry, error) {
	return fetchAll[models.DimensionSetEntry](ctx, s, token, s.companyURL(env, EndpointDimensionSetEntries), since)
}

func (s *BCServiceClient) GetGLBudgetEntries(ctx context.Context, token string, env models.TenantEnvironment, since time.Time) ([]models.GLBudgetEntry, error) {
	return fetchAll[models.GLBudgetEntry](ctx, s, token, s.companyURL(env, EndpointGLBudgetEntries), since)
}

// companyURL builds the company-scoped endpoint URL for one environment.
func (s *BCServiceClient) companyURL(env models.TenantEnvironment, endpoint string) string {
	return fmt.Sprintf("%s/v2.0/%s/%s/%s/companies(%s)/%s",
		s.BaseURL, env.BCTenantID, env.EnvironmentName, s.APIPath, env.CompanyID, endpoint)
}

// fetchAll accumulates every page of one endpoint into memory, following
// next links until the source omits one. A watermark later than the epoch
// sentinel narrows the fetch to records modified strictly after it.
func fetchAll[T any](ctx context.Context, s *BCServiceClient, token, endpoint string, since time.Time) ([]T, error) {
	logger := utils.LoggerFromContext(ctx)

	next := endpoint
	if since.After(utils.SyncEpoch) {
		params := url.Values{}
		params.Set("$filter", "lastModifiedDateTime gt "+utils.FormatODataTime(since))
		next = endpoint + "?" + params.Encode()
	}

	allRecords := []T{}
	pages := 0
	for next != "" {
		pages++
		if pages > s.MaxPages {
			return nil, utils.NewAPIError(0, fmt.Sprintf("page limit of %d exceeded fetching %s", s.MaxPages, endpoint))
		}

		logger.WithField("url", next).Debug("Fetching page")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, utils.NewAPIError(0, err.Error())
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, utils.NewAPIError(resp.StatusCode, err.Error())
		}

		if resp.StatusCode != http.StatusOK {
			return nil, utils.NewAPIError(resp.StatusCode, string(body))
		}

		var envelope ODataEnvelope[T]
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, utils.NewAPIError(resp.StatusCode, fmt.Sprintf("invalid response envelope: %v", err))
		}

		allRecords = append(allRecords, envelope.Value...)
		logger.WithField("count", len(envelope.Value)).WithField("total", len(allRecords)).Debug("Fetched records")

		next = envelope.NextLink
	}

	return allRecords, nil
}
