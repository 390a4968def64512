package googleads

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

var creds = &domain.PlatformCredentials{
	Platform:       domain.PlatformGoogleAds,
	ClientID:       "client",
	ClientSecret:   "secret",
	DeveloperToken: "dev-token",
	RefreshToken:   "refresh",
	AccountID:      "123-456-7890",
}

type fakeGoogle struct {
	tokenCalls  int32
	searchCalls int32
	tokenStatus int
	tokenBody   string
	search      http.HandlerFunc
}

func (f *fakeGoogle) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			atomic.AddInt32(&f.tokenCalls, 1)
			w.Header().Set("Content-Type", "application/json")
			if f.tokenStatus != 0 {
				w.WriteHeader(f.tokenStatus)
				_, _ = w.Write([]byte(f.tokenBody))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
		default:
			atomic.AddInt32(&f.searchCalls, 1)
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			assert.Equal(t, "dev-token", r.Header.Get("developer-token"))
			f.search(w, r)
		}
	}
}

func newTestAdapter(t *testing.T, f *fakeGoogle) *Adapter {
	t.Helper()

	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)

	return NewAdapter(Config{
		BaseURL:    server.URL,
		APIVersion: "v18",
		TokenURL:   server.URL + "/token",
	}, server.Client())
}

func TestFetch_SumsStreamBatches(t *testing.T) {
	f := &fakeGoogle{
		search: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v18/customers/1234567890/googleAds:searchStream", r.URL.Path)

			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), "campaign.id = 555")
			assert.Contains(t, string(body), "segments.date = '2026-10-15'")

			_, _ = w.Write([]byte(`[
				{"results":[{"metrics":{"impressions":"6000","clicks":"200","costMicros":"400000000","conversions":6,"conversionsValue":600}}]},
				{"results":[{"metrics":{"impressions":"4000","clicks":"100","costMicros":"200000000","conversions":3,"conversionsValue":300}}]}
			]`))
		},
	}
	adapter := newTestAdapter(t, f)

	ref := domain.CampaignRef{CampaignID: "cmp-1", ExternalID: "555", Date: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}

	got, err := adapter.Fetch(context.Background(), ref, creds)
	require.NoError(t, err)

	assert.Equal(t, domain.RawCounters{
		Impressions: 10000,
		Clicks:      300,
		Conversions: 9,
		Spend:       600,
		Revenue:     900,
	}, got.RawCounters)

	// segunda chamada reaproveita o token de acesso
	_, err = adapter.Fetch(context.Background(), ref, creds)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.tokenCalls))
}

func TestFetch_EmptyStream(t *testing.T) {
	f := &fakeGoogle{
		search: func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), "FROM customer")
			_, _ = w.Write([]byte(`[]`))
		},
	}
	adapter := newTestAdapter(t, f)

	got, err := adapter.Fetch(context.Background(), domain.CampaignRef{CampaignID: "cmp-1", Date: time.Now()}, creds)
	require.NoError(t, err)
	assert.Equal(t, domain.RawCounters{}, got.RawCounters)
}

func TestFetch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		tokenStatus int
		tokenBody   string
		status      int
		wantKind    error
	}{
		{
			name:        "refresh token revogado",
			tokenStatus: http.StatusBadRequest,
			tokenBody:   `{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`,
			wantKind:    integrator.ErrAuth,
		},
		{
			name:        "servidor de token indisponível",
			tokenStatus: http.StatusServiceUnavailable,
			tokenBody:   `{}`,
			wantKind:    integrator.ErrTransient,
		},
		{
			name:     "permissão negada",
			status:   http.StatusForbidden,
			wantKind: integrator.ErrAuth,
		},
		{
			name:     "cota excedida",
			status:   http.StatusTooManyRequests,
			wantKind: integrator.ErrTransient,
		},
		{
			name:     "erro interno",
			status:   http.StatusInternalServerError,
			wantKind: integrator.ErrTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeGoogle{
				tokenStatus: tt.tokenStatus,
				tokenBody:   tt.tokenBody,
				search: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`))
				},
			}
			adapter := newTestAdapter(t, f)

			_, err := adapter.Fetch(context.Background(), domain.CampaignRef{CampaignID: "cmp-1", ExternalID: "1", Date: time.Now()}, creds)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestFetch_MissingCredentialsDoesNoIO(t *testing.T) {
	f := &fakeGoogle{search: func(w http.ResponseWriter, r *http.Request) {}}
	adapter := newTestAdapter(t, f)

	partial := *creds
	partial.DeveloperToken = ""

	for _, c := range []*domain.PlatformCredentials{nil, {}, &partial} {
		_, err := adapter.Fetch(context.Background(), domain.CampaignRef{CampaignID: "cmp-1"}, c)
		assert.ErrorIs(t, err, integrator.ErrMissingCredentials)
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&f.tokenCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.searchCalls))
}

func TestHealthCheck(t *testing.T) {
	f := &fakeGoogle{
		search: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v18/customers:listAccessibleCustomers", r.URL.Path)
			_, _ = w.Write([]byte(`{"resourceNames":["customers/1234567890"]}`))
		},
	}
	adapter := newTestAdapter(t, f)

	assert.NoError(t, adapter.HealthCheck(context.Background(), creds))
}

func TestBuildQuery_SanitizesID(t *testing.T) {
	q := buildQuery(domain.CampaignRef{ExternalID: "12 OR 1=1", Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	assert.Contains(t, q, "campaign.id = 1211")
	assert.Contains(t, q, "segments.date = '2026-01-02'")
}
