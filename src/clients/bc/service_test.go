package bc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"analytics-sync/src/models"
	"analytics-sync/src/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *BCServiceClient {
	return &BCServiceClient{
		BaseURL:  serverURL,
		APIPath:  "api/sestad/analytics/v1.0",
		MaxPages: 1000,
		client:   &http.Client{},
	}
}

func testEnvironment() models.TenantEnvironment {
	return models.TenantEnvironment{
		EnvironmentName: "production",
		BCTenantID:      uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		CompanyID:       uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		CompanyName:     "Cronus",
		ClientID:        uuid.New(),
	}
}

func glAccountPage(count, offset int, nextLink string) map[string]interface{} {
	values := make([]map[string]interface{}, 0, count)
	for i := 0; i < count; i++ {
		values = append(values, map[string]interface{}{
			"systemId":             uuid.New().String(),
			"no":                   fmt.Sprintf("%04d", offset+i),
			"name":                 fmt.Sprintf("Account %d", offset+i),
			"lastModifiedDateTime": "2026-03-01T10:00:00Z",
		})
	}
	page := map[string]interface{}{"value": values}
	if nextLink != "" {
		page["@odata.nextLink"] = nextLink
	}
	return page
}

func TestGetGLAccounts(t *testing.T) {
	ctx := context.Background()
	env := testEnvironment()

	t.Run("follows next links and preserves page order", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			switch r.URL.Query().Get("page") {
			case "":
				expectedPath := fmt.Sprintf("/v2.0/%s/production/api/sestad/analytics/v1.0/companies(%s)/glAccounts",
					env.BCTenantID, env.CompanyID)
				assert.Equal(t, expectedPath, r.URL.Path)
				_ = json.NewEncoder(w).Encode(glAccountPage(100, 0, server.URL+r.URL.Path+"?page=2"))
			case "2":
				_ = json.NewEncoder(w).Encode(glAccountPage(37, 100, ""))
			default:
				t.Fatalf("unexpected page %q", r.URL.Query().Get("page"))
			}
		}))
		defer server.Close()

		accounts, err := newTestClient(server.URL).GetGLAccounts(ctx, "test-token", env, utils.SyncEpoch)
		require.NoError(t, err)
		require.Len(t, accounts, 137)
		assert.Equal(t, "0000", accounts[0].No)
		assert.Equal(t, "0136", accounts[136].No)
	})

	t.Run("omits the modified filter on a first full fetch", func(t *testing.T) {
		var gotFilter string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotFilter = r.URL.Query().Get("$filter")
			_ = json.NewEncoder(w).Encode(glAccountPage(1, 0, ""))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).GetGLAccounts(ctx, "test-token", env, utils.SyncEpoch)
		require.NoError(t, err)
		assert.Empty(t, gotFilter)
	})

	t.Run("filters on the watermark for incremental fetches", func(t *testing.T) {
		var gotFilter string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotFilter = r.URL.Query().Get("$filter")
			_ = json.NewEncoder(w).Encode(glAccountPage(1, 0, ""))
		}))
		defer server.Close()

		since := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
		_, err := newTestClient(server.URL).GetGLAccounts(ctx, "test-token", env, since)
		require.NoError(t, err)
		assert.Equal(t, "lastModifiedDateTime gt 2026-03-01T09:30:00Z", gotFilter)
	})

	t.Run("returns an empty list when the source has nothing new", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(glAccountPage(0, 0, ""))
		}))
		defer server.Close()

		accounts, err := newTestClient(server.URL).GetGLAccounts(ctx, "test-token", env, utils.SyncEpoch)
		require.NoError(t, err)
		assert.NotNil(t, accounts)
		assert.Empty(t, accounts)
	})

	t.Run("returns an api error with status and body on failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":"Forbidden"}}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).GetGLAccounts(ctx, "test-token", env, utils.SyncEpoch)
		require.Error(t, err)
		var apiErr *utils.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Contains(t, apiErr.Body, "Forbidden")
	})

	t.Run("aborts when the source never stops paging", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(glAccountPage(10, 0, "http://"+r.Host+r.URL.Path))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		client.MaxPages = 3
		_, err := client.GetGLAccounts(ctx, "test-token", env, utils.SyncEpoch)
		require.Error(t, err)
		var apiErr *utils.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Body, "page limit of 3 exceeded")
	})
}

func TestGetGLEntries(t *testing.T) {
	ctx := context.Background()
	env := testEnvironment()

	t.Run("decodes entries with exact amounts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "/glEntries")
			_, _ = w.Write([]byte(`{
				"value": [{
					"systemId": "33333333-3333-3333-3333-333333333333",
					"entryNo": 1042,
					"glAccountNo": "6100",
					"postingDate": "2026-02-28T00:00:00Z",
					"documentType": "Invoice",
					"documentNo": "INV-001",
					"description": "Office supplies",
					"amount": 1234.56,
					"debitAmount": 1234.56,
					"creditAmount": 0,
					"dimensionSetId": 17,
					"lastModifiedDateTime": "2026-03-01T10:00:00Z"
				}]
			}`))
		}))
		defer server.Close()

		entries, err := newTestClient(server.URL).GetGLEntries(ctx, "test-token", env, utils.SyncEpoch)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 1042, entries[0].EntryNo)
		assert.Equal(t, "6100", entries[0].GLAccountNo)
		assert.Equal(t, "1234.56", entries[0].Amount.String())
		assert.Equal(t, 17, entries[0].DimensionSetID)
	})
}
