package metaclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/live-performance-api/infrastructure/integrator/meta/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const insightFields = "account_id,campaign_id,campaign_name,impressions,clicks,spend,actions,action_values"

type Client interface {
	GetInsights(ctx context.Context, objectID, accessToken string, params url.Values) ([]metadomain.Insight, error)
	GetMe(ctx context.Context, accessToken string) (*metadomain.Me, error)
}

type MetaClient struct {
	// URL já inclui a versão da Graph API, ex: https://graph.facebook.com/v22.0
	URL        string
	HTTPClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &MetaClient{
		URL:        strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

// GetInsights consulta /{object}/insights, onde object é o id da campanha ou act_{conta}
func (c *MetaClient) GetInsights(ctx context.Context, objectID, accessToken string, params url.Values) ([]metadomain.Insight, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("fields") == "" {
		params.Set("fields", insightFields)
	}
	params.Set("access_token", accessToken)

	body, err := c.get(ctx, fmt.Sprintf("%s/%s/insights", c.URL, objectID), params)
	if err != nil {
		return nil, err
	}

	var response metadomain.ResponseInsights
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON")
		return nil, fmt.Errorf("erro ao decodificar insights: %w", err)
	}

	return response.Data, nil
}

func (c *MetaClient) GetMe(ctx context.Context, accessToken string) (*metadomain.Me, error) {
	params := url.Values{}
	params.Set("fields", "id,name")
	params.Set("access_token", accessToken)

	body, err := c.get(ctx, c.URL+"/me", params)
	if err != nil {
		return nil, err
	}

	var me metadomain.Me
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, fmt.Errorf("erro ao decodificar usuário: %w", err)
	}

	return &me, nil
}

func (c *MetaClient) get(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar a requisição")
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao fazer a requisição: %w", err)
	}
	defer resp.Body.Close()

	return HandleResponse(resp)
}

// HandleResponse devolve o corpo em caso de sucesso ou um *RequestError com o erro da API
func HandleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	reqErr := &metadomain.RequestError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}

	var errorResp metadomain.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Code != 0 {
		reqErr.Response = &errorResp
	}

	return nil, reqErr
}
