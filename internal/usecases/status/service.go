// Package status monta as visões somente leitura do dashboard ao vivo:
// conexão com as plataformas, totais em cache e tendência horária
package status

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/performance"
	"github.com/vfg2006/live-performance-api/internal/usecases/syncing"
	"github.com/vfg2006/live-performance-api/pkg/monitoring"
	"golang.org/x/sync/errgroup"
)

var ErrCampaignNotFound = syncing.ErrCampaignNotFound

// SchedulerStatus é implementado pelo agendador de sincronização ao vivo
type SchedulerStatus interface {
	Status() domain.ServiceStatus
}

type LiveResponse struct {
	Platforms      []domain.PlatformConnectionStatus `json:"platforms"`
	PlatformTotals []domain.PlatformTotals           `json:"platformTotals"`
	Totals         domain.MetricBundle               `json:"totals"`
	Campaigns      []domain.CampaignLiveView         `json:"campaigns"`
	ServiceStatus  domain.ServiceStatus              `json:"serviceStatus"`
}

type StatusResponse struct {
	ServiceStatus      domain.ServiceStatus              `json:"serviceStatus"`
	Platforms          []domain.PlatformConnectionStatus `json:"platforms"`
	ConnectedPlatforms []domain.Platform                 `json:"connectedPlatforms"`
}

type ConnectionTestResult struct {
	Platform domain.Platform        `json:"platform"`
	Status   domain.ConnectionState `json:"status"`
	Message  string                 `json:"message"`
}

type Aggregator struct {
	registry      *integrator.Registry
	campaigns     repository.CampaignRepository
	snapshots     repository.SnapshotRepository
	credentials   *syncing.CredentialResolver
	healthTimeout time.Duration
	metrics       *monitoring.Metrics
	now           func() time.Time

	schedulerMu sync.RWMutex
	scheduler   SchedulerStatus

	mu        sync.RWMutex
	platforms map[connectionKey]domain.PlatformConnectionStatus
}

// connectionKey separa o estado por usuário: cada um consulta as plataformas
// com as próprias credenciais
type connectionKey struct {
	userID   int
	platform domain.Platform
}

func NewAggregator(
	registry *integrator.Registry,
	campaigns repository.CampaignRepository,
	snapshots repository.SnapshotRepository,
	credentials *syncing.CredentialResolver,
	healthTimeout time.Duration,
	metrics *monitoring.Metrics,
) *Aggregator {
	if healthTimeout <= 0 {
		healthTimeout = 10 * time.Second
	}

	return &Aggregator{
		registry:      registry,
		campaigns:     campaigns,
		snapshots:     snapshots,
		credentials:   credentials,
		healthTimeout: healthTimeout,
		metrics:       metrics,
		now:           time.Now,
		platforms:     make(map[connectionKey]domain.PlatformConnectionStatus),
	}
}

// SetScheduler liga o agendador depois da construção: ele depende do
// orquestrador, que por sua vez usa o agregador como StatusRecorder
func (a *Aggregator) SetScheduler(s SchedulerStatus) {
	a.schedulerMu.Lock()
	defer a.schedulerMu.Unlock()
	a.scheduler = s
}

func (a *Aggregator) serviceStatus() domain.ServiceStatus {
	a.schedulerMu.RLock()
	defer a.schedulerMu.RUnlock()

	if a.scheduler == nil {
		return domain.ServiceStatus{}
	}
	return a.scheduler.Status()
}

func (a *Aggregator) RecordSuccess(userID int, platform domain.Platform, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := connectionKey{userID: userID, platform: platform}
	st := a.platforms[key]
	st.Platform = platform
	st.Status = domain.ConnectionStateConnected
	st.LastError = nil
	st.LastSuccessfulSync = &at
	st.CheckedAt = at
	a.platforms[key] = st

	a.metrics.SetPlatformConnected(platform.String(), true)
}

func (a *Aggregator) RecordFailure(userID int, platform domain.Platform, err error, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := connectionKey{userID: userID, platform: platform}
	st := a.platforms[key]
	st.Platform = platform
	st.CheckedAt = at
	if errors.Is(err, integrator.ErrMissingCredentials) {
		st.Status = domain.ConnectionStateNotConfigured
	} else {
		st.Status = domain.ConnectionStateError
	}
	msg := err.Error()
	st.LastError = &msg
	a.platforms[key] = st

	a.metrics.SetPlatformConnected(platform.String(), false)
}

// Live monta o painel ao vivo a partir das métricas em cache das campanhas
// ativas. Plataformas nunca verificadas são checadas na hora.
func (a *Aggregator) Live(ctx context.Context, userID int) (*LiveResponse, error) {
	campaigns, err := a.campaigns.ListByUser(ctx, userID, domain.CampaignStatusActive)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar campanhas: %w", err)
	}

	resp := &LiveResponse{
		Platforms:     a.platformStatuses(ctx, userID, false),
		Campaigns:     make([]domain.CampaignLiveView, 0, len(campaigns)),
		ServiceStatus: a.serviceStatus(),
	}

	byPlatform := make(map[domain.Platform][]domain.MetricBundle)
	counts := make(map[domain.Platform]int)
	var all []domain.MetricBundle

	for _, c := range campaigns {
		view := domain.CampaignLiveView{
			ID:           c.ID,
			Name:         c.Name,
			Platform:     c.Platform,
			Status:       string(c.Status),
			DailyBudget:  c.DailyBudget,
			LastSyncedAt: c.LastSyncedAt,
			Stale:        c.IsStale(),
		}
		if view.Stale {
			view.SyncError = c.LastSyncError
		}

		counts[c.Platform]++

		if c.Metrics != nil {
			display := performance.ForDisplay(performance.Recalculate(*c.Metrics))
			view.Metrics = &display

			byPlatform[c.Platform] = append(byPlatform[c.Platform], *c.Metrics)
			all = append(all, *c.Metrics)
		}

		resp.Campaigns = append(resp.Campaigns, view)
	}

	resp.Totals = performance.ForDisplay(performance.Sum(all...))

	for platform, n := range counts {
		resp.PlatformTotals = append(resp.PlatformTotals, domain.PlatformTotals{
			Platform:  platform,
			Campaigns: n,
			Metrics:   performance.ForDisplay(performance.Sum(byPlatform[platform]...)),
		})
	}
	sort.Slice(resp.PlatformTotals, func(i, j int) bool {
		return resp.PlatformTotals[i].Platform < resp.PlatformTotals[j].Platform
	})

	return resp, nil
}

// Status sempre refaz as verificações de conexão
func (a *Aggregator) Status(ctx context.Context, userID int) *StatusResponse {
	platforms := a.platformStatuses(ctx, userID, true)

	connected := make([]domain.Platform, 0, len(platforms))
	for _, p := range platforms {
		if p.Status == domain.ConnectionStateConnected {
			connected = append(connected, p.Platform)
		}
	}

	return &StatusResponse{
		ServiceStatus:      a.serviceStatus(),
		Platforms:          platforms,
		ConnectedPlatforms: connected,
	}
}

func (a *Aggregator) TestConnection(ctx context.Context, userID int, platform domain.Platform) (*ConnectionTestResult, error) {
	adapter, err := a.registry.Get(platform)
	if err != nil {
		return nil, err
	}

	st := a.check(ctx, userID, adapter)

	result := &ConnectionTestResult{
		Platform: platform,
		Status:   st.Status,
	}

	switch st.Status {
	case domain.ConnectionStateConnected:
		result.Message = "Conexão estabelecida com sucesso"
	case domain.ConnectionStateNotConfigured:
		result.Message = "Credenciais da plataforma não configuradas"
	default:
		result.Message = "Falha na conexão"
		if st.LastError != nil {
			result.Message = *st.LastError
		}
	}

	return result, nil
}

// HourlyTrends devolve a série horária do dia, de uma campanha ou somada
// entre todas as campanhas ativas do usuário, em ordem crescente de hora
func (a *Aggregator) HourlyTrends(ctx context.Context, userID int, date time.Time, campaignID string) ([]domain.HourlyTrendPoint, error) {
	var ids []string

	if campaignID != "" {
		c, err := a.campaigns.GetByID(ctx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar campanha: %w", err)
		}
		if c == nil || c.UserID != userID {
			return nil, ErrCampaignNotFound
		}
		ids = []string{c.ID}
	} else {
		campaigns, err := a.campaigns.ListByUser(ctx, userID, domain.CampaignStatusActive)
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar campanhas: %w", err)
		}
		for _, c := range campaigns {
			ids = append(ids, c.ID)
		}
	}

	points := []domain.HourlyTrendPoint{}
	if len(ids) == 0 {
		return points, nil
	}

	snapshots, err := a.snapshots.ListHourlyByCampaigns(ctx, ids, date)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar snapshots horários: %w", err)
	}

	byHour := make(map[int][]domain.MetricBundle)
	for _, s := range snapshots {
		if s.Hour == nil {
			continue
		}
		byHour[*s.Hour] = append(byHour[*s.Hour], s.Metrics)
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	day := date.Format(time.DateOnly)
	for _, h := range hours {
		points = append(points, domain.HourlyTrendPoint{
			Date:    day,
			Hour:    h,
			Metrics: performance.ForDisplay(performance.Sum(byHour[h]...)),
		})
	}

	return points, nil
}

// platformStatuses verifica as plataformas em paralelo. Com refresh=false
// reaproveita o último estado conhecido do usuário em cada plataforma.
func (a *Aggregator) platformStatuses(ctx context.Context, userID int, refresh bool) []domain.PlatformConnectionStatus {
	platforms := a.registry.Platforms()
	out := make([]domain.PlatformConnectionStatus, len(platforms))

	var g errgroup.Group
	for i, platform := range platforms {
		i := i
		if !refresh {
			a.mu.RLock()
			cached, ok := a.platforms[connectionKey{userID: userID, platform: platform}]
			a.mu.RUnlock()
			if ok {
				out[i] = cached
				continue
			}
		}

		adapter, err := a.registry.Get(platform)
		if err != nil {
			continue
		}

		g.Go(func() error {
			out[i] = a.check(ctx, userID, adapter)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (a *Aggregator) check(ctx context.Context, userID int, adapter integrator.Adapter) domain.PlatformConnectionStatus {
	platform := adapter.Platform()
	now := a.now()

	st := domain.PlatformConnectionStatus{
		Platform:  platform,
		CheckedAt: now,
	}

	a.mu.RLock()
	if prev, ok := a.platforms[connectionKey{userID: userID, platform: platform}]; ok {
		st.LastSuccessfulSync = prev.LastSuccessfulSync
	}
	a.mu.RUnlock()

	creds, err := a.credentials.Resolve(ctx, userID, platform)
	if err != nil {
		msg := err.Error()
		st.Status = domain.ConnectionStateError
		st.LastError = &msg
		return st
	}

	if creds.IsEmpty() {
		st.Status = domain.ConnectionStateNotConfigured
		a.store(userID, st)
		return st
	}

	checkCtx, cancel := context.WithTimeout(ctx, a.healthTimeout)
	defer cancel()

	if err := adapter.HealthCheck(checkCtx, creds); err != nil {
		msg := err.Error()
		st.Status = domain.ConnectionStateError
		st.LastError = &msg

		logrus.WithFields(logrus.Fields{
			"platform": platform,
			"user_id":  userID,
			"kind":     integrator.KindName(err),
			"error":    msg,
		}).Warn("Verificação de conexão falhou")
	} else {
		st.Status = domain.ConnectionStateConnected
	}

	a.store(userID, st)

	return st
}

func (a *Aggregator) store(userID int, st domain.PlatformConnectionStatus) {
	a.mu.Lock()
	a.platforms[connectionKey{userID: userID, platform: st.Platform}] = st
	a.mu.Unlock()

	a.metrics.SetPlatformConnected(st.Platform.String(), st.Status == domain.ConnectionStateConnected)
}
