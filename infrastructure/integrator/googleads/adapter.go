// Package googleads implementa o adaptador da Google Ads API (REST searchStream)
package googleads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"golang.org/x/oauth2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	BaseURL    string
	APIVersion string
	TokenURL   string
}

type Adapter struct {
	cfg        Config
	httpClient *http.Client

	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

func NewAdapter(cfg Config, httpClient *http.Client) *Adapter {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Adapter{
		cfg:        cfg,
		httpClient: httpClient,
		sources:    make(map[string]oauth2.TokenSource),
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformGoogleAds
}

type searchStreamBatch struct {
	Results []struct {
		Metrics struct {
			Impressions      int64   `json:"impressions,string"`
			Clicks           int64   `json:"clicks,string"`
			CostMicros       int64   `json:"costMicros,string"`
			Conversions      float64 `json:"conversions"`
			ConversionsValue float64 `json:"conversionsValue"`
		} `json:"metrics"`
	} `json:"results"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Fetch consulta as métricas do dia. Sem id externo, soma o cliente inteiro.
func (a *Adapter) Fetch(ctx context.Context, ref domain.CampaignRef, creds *domain.PlatformCredentials) (*domain.MetricBundle, error) {
	if err := validate(creds); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"query": buildQuery(ref)})
	if err != nil {
		return nil, fmt.Errorf("erro ao montar a consulta: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/customers/%s/googleAds:searchStream",
		strings.TrimRight(a.cfg.BaseURL, "/"), a.cfg.APIVersion, customerID(creds.AccountID))

	respBody, err := a.do(ctx, creds, http.MethodPost, endpoint, body)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": ref.CampaignID,
			"customer_id": creds.AccountID,
			"error":       err.Error(),
		}).Error("googleads: falha ao consultar searchStream")
		return nil, err
	}

	var batches []searchStreamBatch
	if err := json.Unmarshal(respBody, &batches); err != nil {
		return nil, integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformGoogleAds,
			fmt.Errorf("erro ao decodificar resposta: %w", err))
	}

	var raw domain.RawCounters
	var costMicros int64
	for _, batch := range batches {
		for _, row := range batch.Results {
			raw.Impressions += row.Metrics.Impressions
			raw.Clicks += row.Metrics.Clicks
			raw.Conversions += row.Metrics.Conversions
			raw.Revenue += row.Metrics.ConversionsValue
			costMicros += row.Metrics.CostMicros
		}
	}
	raw.Spend = float64(costMicros) / 1e6

	return &domain.MetricBundle{RawCounters: raw}, nil
}

func (a *Adapter) HealthCheck(ctx context.Context, creds *domain.PlatformCredentials) error {
	if err := validateAuth(creds); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/customers:listAccessibleCustomers",
		strings.TrimRight(a.cfg.BaseURL, "/"), a.cfg.APIVersion)

	_, err := a.do(ctx, creds, http.MethodGet, endpoint, nil)
	return err
}

func (a *Adapter) do(ctx context.Context, creds *domain.PlatformCredentials, method, endpoint string, body []byte) ([]byte, error) {
	token, err := a.tokenSource(creds).Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	token.SetAuthHeader(req)
	req.Header.Set("developer-token", creds.DeveloperToken)
	req.Header.Set("Content-Type", "application/json")
	if creds.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", customerID(creds.LoginCustomerID))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformGoogleAds, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformGoogleAds,
			fmt.Errorf("erro ao ler resposta: %w", err))
	}

	if resp.StatusCode == http.StatusOK {
		return respBody, nil
	}

	return nil, classifyStatus(resp.StatusCode, respBody)
}

// tokenSource reaproveita o token de acesso enquanto for válido para o mesmo
// conjunto de credenciais
func (a *Adapter) tokenSource(creds *domain.PlatformCredentials) oauth2.TokenSource {
	key := creds.ClientID + "|" + creds.RefreshToken

	a.mu.Lock()
	defer a.mu.Unlock()

	if ts, ok := a.sources[key]; ok {
		return ts
	}

	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, a.httpClient)
	ts := oauth2.ReuseTokenSource(nil, cfg.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: creds.RefreshToken}))
	a.sources[key] = ts

	return ts
}

func buildQuery(ref domain.CampaignRef) string {
	day := ref.Date.Format(time.DateOnly)

	if ref.IsAccountLevel() {
		return fmt.Sprintf("SELECT metrics.impressions, metrics.clicks, metrics.conversions, metrics.cost_micros, "+
			"metrics.conversions_value FROM customer WHERE segments.date = '%s'", day)
	}

	return fmt.Sprintf("SELECT campaign.id, metrics.impressions, metrics.clicks, metrics.conversions, metrics.cost_micros, "+
		"metrics.conversions_value FROM campaign WHERE segments.date = '%s' AND campaign.id = %s", day, sanitizeID(ref.ExternalID))
}

func validateAuth(creds *domain.PlatformCredentials) error {
	if creds.IsEmpty() {
		return integrator.NewAdapterError(integrator.ErrMissingCredentials, domain.PlatformGoogleAds, nil)
	}

	required := []struct {
		field string
		value string
	}{
		{"client_id", creds.ClientID},
		{"client_secret", creds.ClientSecret},
		{"developer_token", creds.DeveloperToken},
		{"refresh_token", creds.RefreshToken},
	}

	for _, r := range required {
		if r.value == "" {
			return integrator.MissingCredentials(domain.PlatformGoogleAds, r.field)
		}
	}

	return nil
}

func validate(creds *domain.PlatformCredentials) error {
	if err := validateAuth(creds); err != nil {
		return err
	}
	if creds.AccountID == "" {
		return integrator.MissingCredentials(domain.PlatformGoogleAds, "account_id")
	}
	return nil
}

func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" || retrieveErr.ErrorCode == "invalid_client" ||
			retrieveErr.ErrorCode == "unauthorized_client" {
			return integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformGoogleAds, err)
		}
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode < http.StatusInternalServerError &&
			retrieveErr.Response.StatusCode != http.StatusTooManyRequests {
			return integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformGoogleAds, err)
		}
	}

	return integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformGoogleAds, err)
}

func classifyStatus(status int, body []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	err := fmt.Errorf("erro na resposta da API. Status: %d, Corpo: %s", status, string(body))
	if apiErr.Error.Message != "" {
		err = fmt.Errorf("erro na resposta da API. Status: %d, %s: %s", status, apiErr.Error.Status, apiErr.Error.Message)
	}

	switch {
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformGoogleAds, err)
	default:
		// 401, 403 e consultas rejeitadas não se resolvem repetindo
		return integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformGoogleAds, err)
	}
}

func customerID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// sanitizeID mantém apenas dígitos para que o id não altere a consulta GAQL
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
