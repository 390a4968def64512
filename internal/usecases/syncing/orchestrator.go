// Package syncing executa a sincronização de uma campanha: consulta a
// plataforma, calcula as métricas, grava a série histórica e avalia alertas
package syncing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/infrastructure/synclock"
	"github.com/vfg2006/live-performance-api/internal/alerting"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/performance"
	"github.com/vfg2006/live-performance-api/pkg/monitoring"
)

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// StatusRecorder recebe o resultado de cada chamada às plataformas, por dono
// da campanha (implementado pelo agregador de status)
type StatusRecorder interface {
	RecordSuccess(userID int, platform domain.Platform, at time.Time)
	RecordFailure(userID int, platform domain.Platform, err error, at time.Time)
}

// SyncResult descreve uma tentativa. EvaluationErr é ErrEvaluationSkipped
// quando a plataforma falhou e os alertas não foram avaliados.
type SyncResult struct {
	CampaignID    string               `json:"campaignId"`
	Platform      domain.Platform      `json:"platform"`
	Trigger       Trigger              `json:"trigger"`
	Seq           int64                `json:"-"`
	Applied       bool                 `json:"applied"`
	Metrics       *domain.MetricBundle `json:"metrics"`
	Alerts        []domain.AlertEvent  `json:"alerts"`
	Snapshots     []domain.SnapshotKey `json:"snapshots"`
	EvaluationErr error                `json:"-"`
	StartedAt     time.Time            `json:"startedAt"`
	FinishedAt    time.Time            `json:"finishedAt"`
}

//go:generate mockgen -source=orchestrator.go -destination=mocks/orchestrator.go -package=mocks

type Orchestrator interface {
	Sync(ctx context.Context, campaign *domain.Campaign, trigger Trigger) (*SyncResult, error)
	ForceSync(ctx context.Context, userID int, campaignID string) (*SyncResult, error)
}

// Options reúne as dependências do orquestrador. Fallback são as credenciais
// globais (variáveis de ambiente) usadas quando o usuário não cadastrou as suas.
type Options struct {
	Registry    *integrator.Registry
	Campaigns   repository.CampaignRepository
	Credentials repository.CredentialsRepository
	Alerts      repository.AlertRepository
	Writer      repository.SyncWriter
	Evaluator   *alerting.Evaluator
	Locker      synclock.Locker
	Recorder    StatusRecorder
	Metrics     *monitoring.Metrics
	Retry       integrator.RetryPolicy
	Fallback    map[domain.Platform]*domain.PlatformCredentials
	Now         func() time.Time
}

type orchestrator struct {
	registry    *integrator.Registry
	campaigns   repository.CampaignRepository
	credentials *CredentialResolver
	alerts      repository.AlertRepository
	writer      repository.SyncWriter
	evaluator   *alerting.Evaluator
	locker      synclock.Locker
	recorder    StatusRecorder
	metrics     *monitoring.Metrics
	retry       integrator.RetryPolicy
	now         func() time.Time

	lastSeq atomic.Int64
}

func NewOrchestrator(opts Options) Orchestrator {
	o := &orchestrator{
		registry:    opts.Registry,
		campaigns:   opts.Campaigns,
		credentials: NewCredentialResolver(opts.Credentials, opts.Fallback),
		alerts:      opts.Alerts,
		writer:      opts.Writer,
		evaluator:   opts.Evaluator,
		locker:      opts.Locker,
		recorder:    opts.Recorder,
		metrics:     opts.Metrics,
		retry:       opts.Retry,
		now:         opts.Now,
	}

	if o.now == nil {
		o.now = time.Now
	}
	if o.locker == nil {
		o.locker = synclock.NewMemoryLocker()
	}
	if o.evaluator == nil {
		o.evaluator = alerting.NewEvaluator(alerting.DefaultRules())
	}
	if o.retry.Attempts <= 0 {
		o.retry = integrator.DefaultRetryPolicy()
	}

	return o
}

// nextSeq é estritamente crescente e baseado no relógio, então continua
// crescente entre reinícios e entre instâncias com relógios sincronizados
func (o *orchestrator) nextSeq() int64 {
	for {
		last := o.lastSeq.Load()
		next := o.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if o.lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

func (o *orchestrator) ForceSync(ctx context.Context, userID int, campaignID string) (*SyncResult, error) {
	campaign, err := o.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar campanha: %w", err)
	}

	if campaign == nil || campaign.UserID != userID {
		return nil, ErrCampaignNotFound
	}

	return o.Sync(ctx, campaign, TriggerManual)
}

func (o *orchestrator) Sync(ctx context.Context, campaign *domain.Campaign, trigger Trigger) (*SyncResult, error) {
	if !campaign.IsSyncEligible() {
		return nil, ErrCampaignNotActive
	}

	unlock, ok, err := o.locker.TryLock(ctx, campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("erro ao travar campanha %s: %w", campaign.ID, err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}
	defer unlock()

	startedAt := o.now()
	result := &SyncResult{
		CampaignID: campaign.ID,
		Platform:   campaign.Platform,
		Trigger:    trigger,
		Seq:        o.nextSeq(),
		StartedAt:  startedAt,
	}

	log := logrus.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"platform":    campaign.Platform,
		"trigger":     trigger,
		"seq":         result.Seq,
	})

	bundle, err := o.fetch(ctx, campaign, startedAt)
	if err != nil {
		o.failed(ctx, campaign, result, err)
		log.WithField("error", err.Error()).Warn("Falha ao consultar plataforma, métricas em cache mantidas")
		return result, err
	}

	metrics := performance.Calculate(bundle.RawCounters)
	result.Metrics = &metrics

	prior, err := o.priorAlerts(ctx, campaign.ID, startedAt)
	if err != nil {
		o.failed(ctx, campaign, result, err)
		return result, err
	}

	alerts := o.evaluator.Evaluate(domain.CampaignContext{
		CampaignID:  campaign.ID,
		Name:        campaign.Name,
		Platform:    campaign.Platform,
		DailyBudget: campaign.DailyBudget,
	}, metrics, prior, startedAt)

	written, err := o.writer.Apply(ctx, repository.SyncWrite{
		CampaignID: campaign.ID,
		Seq:        result.Seq,
		At:         startedAt,
		Metrics:    metrics,
		Alerts:     alerts,
	})
	if err != nil {
		o.failed(ctx, campaign, result, err)
		log.WithField("error", err.Error()).Error("Erro ao gravar sincronização")
		return result, err
	}

	result.FinishedAt = o.now()

	if !written.Applied {
		// uma tentativa mais recente já gravou; nada desta foi persistido
		o.metrics.RecordSync(campaign.Platform.String(), "stale", result.FinishedAt.Sub(startedAt))
		log.Info("Sincronização descartada: sequência mais recente já aplicada")
		return result, nil
	}

	result.Applied = true
	result.Alerts = alerts
	result.Snapshots = written.Snapshots

	if o.recorder != nil {
		o.recorder.RecordSuccess(campaign.UserID, campaign.Platform, result.FinishedAt)
	}
	o.metrics.RecordSync(campaign.Platform.String(), "success", result.FinishedAt.Sub(startedAt))
	for _, a := range alerts {
		o.metrics.RecordAlert(string(a.Type), string(a.Severity))
	}

	log.WithFields(logrus.Fields{
		"impressions": metrics.Impressions,
		"clicks":      metrics.Clicks,
		"spend":       metrics.Spend,
		"alerts":      len(alerts),
	}).Info("Campanha sincronizada")

	return result, nil
}

func (o *orchestrator) fetch(ctx context.Context, campaign *domain.Campaign, at time.Time) (*domain.MetricBundle, error) {
	creds, err := o.credentials.Resolve(ctx, campaign.UserID, campaign.Platform)
	if err != nil {
		return nil, err
	}

	adapter, err := o.registry.Get(campaign.Platform)
	if err != nil {
		return nil, err
	}

	return integrator.FetchWithRetry(ctx, adapter, campaign.Ref(at), creds, o.retry)
}

func (o *orchestrator) priorAlerts(ctx context.Context, campaignID string, now time.Time) ([]domain.AlertEvent, error) {
	cooldown := o.evaluator.Rules().Cooldown
	if cooldown <= 0 || o.alerts == nil {
		return nil, nil
	}

	prior, err := o.alerts.ListSince(ctx, campaignID, now.Add(-cooldown))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar alertas recentes: %w", err)
	}

	return prior, nil
}

// failed registra a falha na campanha sem tocar nas métricas em cache
func (o *orchestrator) failed(ctx context.Context, campaign *domain.Campaign, result *SyncResult, cause error) {
	result.FinishedAt = o.now()
	result.EvaluationErr = ErrEvaluationSkipped
	result.Metrics = nil

	outcome := "store_error"
	var adapterErr *integrator.AdapterError
	if errors.As(cause, &adapterErr) {
		outcome = integrator.KindName(cause)
		if o.recorder != nil {
			o.recorder.RecordFailure(campaign.UserID, campaign.Platform, cause, result.FinishedAt)
		}
	}
	o.metrics.RecordSync(campaign.Platform.String(), outcome, result.FinishedAt.Sub(result.StartedAt))

	// a requisição pode ter sido cancelada; o registro da falha não deve ser
	if err := o.campaigns.RecordSyncFailure(context.WithoutCancel(ctx), campaign.ID, cause.Error(), result.FinishedAt); err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.ID,
			"error":       err.Error(),
		}).Error("Erro ao registrar falha de sincronização")
	}
}
