package meta

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	metadomain "github.com/vfg2006/live-performance-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

type Adapter struct {
	Client metaclient.Client
}

func NewAdapter(client metaclient.Client) *Adapter {
	return &Adapter{Client: client}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformMeta
}

// Fetch busca os contadores do dia da campanha. Sem id externo, consulta o
// total da conta de anúncios.
func (a *Adapter) Fetch(ctx context.Context, ref domain.CampaignRef, creds *domain.PlatformCredentials) (*domain.MetricBundle, error) {
	if err := a.validate(ref, creds); err != nil {
		return nil, err
	}

	objectID := "act_" + creds.AccountID
	if !ref.IsAccountLevel() {
		objectID = ref.ExternalID
	}

	day := ref.Date.Format("2006-01-02")
	params := url.Values{}
	params.Set("time_range", fmt.Sprintf("{\"since\":\"%s\",\"until\":\"%s\"}", day, day))
	params.Set("level", "campaign")
	if ref.IsAccountLevel() {
		params.Set("level", "account")
	}

	insights, err := a.Client.GetInsights(ctx, objectID, creds.AccessToken, params)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": ref.CampaignID,
			"object_id":   objectID,
			"error":       err.Error(),
		}).Error("insights: falha ao buscar insights na API do Meta")
		return nil, classify(err)
	}

	var raw domain.RawCounters
	for i := range insights {
		insight := insights[i]
		raw = raw.Add(domain.RawCounters{
			Impressions: insight.GetImpressions(),
			Clicks:      insight.GetClicks(),
			Conversions: insight.GetConversions(),
			Spend:       insight.GetSpend(),
			Revenue:     insight.GetRevenue(),
		})
	}

	logrus.WithFields(logrus.Fields{
		"campaign_id": ref.CampaignID,
		"object_id":   objectID,
		"rows":        len(insights),
	}).Debug("insights: contadores obtidos com sucesso")

	// sem linhas significa nenhuma entrega no dia: todos os contadores zerados
	return &domain.MetricBundle{RawCounters: raw}, nil
}

func (a *Adapter) HealthCheck(ctx context.Context, creds *domain.PlatformCredentials) error {
	if creds.IsEmpty() || creds.AccessToken == "" {
		return integrator.MissingCredentials(domain.PlatformMeta, "access_token")
	}

	if _, err := a.Client.GetMe(ctx, creds.AccessToken); err != nil {
		return classify(err)
	}

	return nil
}

// account_id só é necessário quando não há id externo da campanha
func (a *Adapter) validate(ref domain.CampaignRef, creds *domain.PlatformCredentials) error {
	if creds.IsEmpty() {
		return integrator.NewAdapterError(integrator.ErrMissingCredentials, domain.PlatformMeta, nil)
	}
	if creds.AccessToken == "" {
		return integrator.MissingCredentials(domain.PlatformMeta, "access_token")
	}
	if ref.IsAccountLevel() && creds.AccountID == "" {
		return integrator.MissingCredentials(domain.PlatformMeta, "account_id")
	}
	return nil
}

func classify(err error) error {
	var reqErr *metadomain.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.IsAuth():
			return integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformMeta, err)
		case reqErr.IsTransient():
			return integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformMeta, err)
		default:
			// requisição rejeitada por parâmetros: repetir não resolve
			return integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformMeta, err)
		}
	}

	// rede, timeout ou corpo ilegível
	return integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformMeta, err)
}
