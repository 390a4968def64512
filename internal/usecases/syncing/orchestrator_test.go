package syncing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/infrastructure/synclock"
	"github.com/vfg2006/live-performance-api/internal/alerting"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

var syncNow = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

type fakeAdapter struct {
	mu    sync.Mutex
	calls map[string]int
	fetch func(ref domain.CampaignRef) (*domain.MetricBundle, error)
	creds []*domain.PlatformCredentials
}

func newFakeAdapter(fetch func(ref domain.CampaignRef) (*domain.MetricBundle, error)) *fakeAdapter {
	return &fakeAdapter{calls: make(map[string]int), fetch: fetch}
}

func (a *fakeAdapter) Platform() domain.Platform { return domain.PlatformMeta }

func (a *fakeAdapter) Fetch(_ context.Context, ref domain.CampaignRef, creds *domain.PlatformCredentials) (*domain.MetricBundle, error) {
	a.mu.Lock()
	a.calls[ref.CampaignID]++
	a.creds = append(a.creds, creds)
	a.mu.Unlock()
	return a.fetch(ref)
}

func (a *fakeAdapter) HealthCheck(context.Context, *domain.PlatformCredentials) error { return nil }

func (a *fakeAdapter) callCount(campaignID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[campaignID]
}

type fakeRecorder struct {
	mu        sync.Mutex
	successes int
	failures  []error
	users     []int
}

func (r *fakeRecorder) RecordSuccess(userID int, _ domain.Platform, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes++
	r.users = append(r.users, userID)
}

func (r *fakeRecorder) RecordFailure(userID int, _ domain.Platform, err error, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
	r.users = append(r.users, userID)
}

func scenarioBundle(domain.CampaignRef) (*domain.MetricBundle, error) {
	return &domain.MetricBundle{RawCounters: domain.RawCounters{
		Impressions: 10000, Clicks: 300, Conversions: 9, Spend: 600, Revenue: 900,
	}}, nil
}

func activeCampaign(id string, userID int) domain.Campaign {
	external := "ext-" + id
	return domain.Campaign{
		ID:         id,
		UserID:     userID,
		Name:       "Campanha " + id,
		Platform:   domain.PlatformMeta,
		ExternalID: &external,
		Status:     domain.CampaignStatusActive,
	}
}

var metaCreds = &domain.PlatformCredentials{
	Platform:    domain.PlatformMeta,
	AccessToken: "token",
	AccountID:   "123",
}

type fixture struct {
	store    *memStore
	adapter  *fakeAdapter
	recorder *fakeRecorder
	locker   *synclock.MemoryLocker
	orch     Orchestrator
}

func newFixture(t *testing.T, adapter *fakeAdapter, fallback *domain.PlatformCredentials, campaigns ...domain.Campaign) *fixture {
	t.Helper()

	store := newMemStore(campaigns...)
	recorder := &fakeRecorder{}
	locker := synclock.NewMemoryLocker()

	opts := Options{
		Registry:    integrator.NewRegistry(adapter),
		Campaigns:   store,
		Credentials: store,
		Alerts:      store,
		Writer:      repository.NewSyncWriter(store, store, store, store),
		Evaluator:   alerting.NewEvaluator(alerting.DefaultRules()),
		Locker:      locker,
		Recorder:    recorder,
		Retry:       integrator.RetryPolicy{Attempts: 1, Timeout: time.Second},
		Now:         func() time.Time { return syncNow },
	}
	if fallback != nil {
		opts.Fallback = map[domain.Platform]*domain.PlatformCredentials{fallback.Platform: fallback}
	}

	return &fixture{
		store:    store,
		adapter:  adapter,
		recorder: recorder,
		locker:   locker,
		orch:     NewOrchestrator(opts),
	}
}

func TestSync_Success(t *testing.T) {
	f := newFixture(t, newFakeAdapter(scenarioBundle), metaCreds, activeCampaign("cmp-1", 1))
	c := f.store.campaign("cmp-1")

	result, err := f.orch.Sync(context.Background(), &c, TriggerScheduled)
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.NoError(t, result.EvaluationErr)
	assert.Len(t, result.Snapshots, 4)
	require.NotNil(t, result.Metrics)
	assert.Equal(t, 3.0, result.Metrics.CTR)
	assert.Equal(t, 1.5, result.Metrics.ROAS)

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, domain.AlertTypeLowROAS, result.Alerts[0].Type)
	assert.Equal(t, 1, f.store.alertCount("cmp-1"))

	stored := f.store.campaign("cmp-1")
	require.NotNil(t, stored.Metrics)
	assert.Equal(t, *result.Metrics, *stored.Metrics)
	assert.Equal(t, result.Seq, stored.MetricsSyncSeq)
	assert.Equal(t, syncNow, *stored.LastSyncedAt)

	for _, g := range []domain.Granularity{domain.GranularityHourly, domain.GranularityDaily, domain.GranularityWeekly, domain.GranularityMonthly} {
		snap, ok := f.store.snapshot(domain.NewSnapshotKey("cmp-1", syncNow, g))
		require.True(t, ok, g)
		assert.Equal(t, int64(10000), snap.Metrics.Impressions, g)
		assert.Equal(t, 2.0, snap.Metrics.CPC, g)
	}

	assert.Equal(t, 1, f.recorder.successes)
	assert.Equal(t, []int{1}, f.recorder.users, "estado registrado para o dono da campanha")
}

func TestSync_Idempotent(t *testing.T) {
	f := newFixture(t, newFakeAdapter(scenarioBundle), metaCreds, activeCampaign("cmp-1", 1))

	c := f.store.campaign("cmp-1")
	first, err := f.orch.Sync(context.Background(), &c, TriggerScheduled)
	require.NoError(t, err)

	c = f.store.campaign("cmp-1")
	second, err := f.orch.Sync(context.Background(), &c, TriggerScheduled)
	require.NoError(t, err)

	assert.True(t, second.Applied)
	assert.Greater(t, second.Seq, first.Seq)
	assert.Equal(t, *first.Metrics, *second.Metrics)
	assert.Equal(t, 4, f.store.snapshotCount("cmp-1"), "uma linha por chave")

	hourly, _ := f.store.snapshot(domain.NewSnapshotKey("cmp-1", syncNow, domain.GranularityHourly))
	assert.Equal(t, *first.Metrics, hourly.Metrics)
	assert.Equal(t, second.Seq, hourly.SyncSeq)

	// rollup semanal não acumula execuções repetidas
	weekly, _ := f.store.snapshot(domain.NewSnapshotKey("cmp-1", syncNow, domain.GranularityWeekly))
	assert.Equal(t, int64(10000), weekly.Metrics.Impressions)

	// cooldown impede o mesmo alerta no ciclo seguinte
	assert.Empty(t, second.Alerts)
	assert.Equal(t, 1, f.store.alertCount("cmp-1"))
}

func TestSync_FailureIsolation(t *testing.T) {
	previous := domain.MetricBundle{RawCounters: domain.RawCounters{Impressions: 42}}
	failing := activeCampaign("cmp-1", 1)
	failing.Metrics = &previous
	failing.MetricsSyncSeq = 1

	adapter := newFakeAdapter(func(ref domain.CampaignRef) (*domain.MetricBundle, error) {
		if ref.CampaignID == "cmp-1" {
			return nil, integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformMeta, errors.New("token expirado"))
		}
		return scenarioBundle(ref)
	})
	f := newFixture(t, adapter, metaCreds, failing, activeCampaign("cmp-2", 1))

	c1 := f.store.campaign("cmp-1")
	c2 := f.store.campaign("cmp-2")

	var wg sync.WaitGroup
	var res1, res2 *SyncResult
	var err1, err2 error
	wg.Add(2)
	go func() { defer wg.Done(); res1, err1 = f.orch.Sync(context.Background(), &c1, TriggerScheduled) }()
	go func() { defer wg.Done(); res2, err2 = f.orch.Sync(context.Background(), &c2, TriggerScheduled) }()
	wg.Wait()

	require.Error(t, err1)
	assert.ErrorIs(t, err1, integrator.ErrAuth)
	assert.ErrorIs(t, res1.EvaluationErr, ErrEvaluationSkipped)
	assert.False(t, res1.Applied)
	assert.Nil(t, res1.Metrics)

	stored1 := f.store.campaign("cmp-1")
	assert.Equal(t, previous, *stored1.Metrics, "cache mantido")
	assert.Equal(t, int64(1), stored1.MetricsSyncSeq)
	require.NotNil(t, stored1.LastSyncError)
	assert.Contains(t, *stored1.LastSyncError, "token expirado")
	assert.True(t, stored1.IsStale())
	assert.Zero(t, f.store.snapshotCount("cmp-1"))
	assert.Zero(t, f.store.alertCount("cmp-1"))

	require.NoError(t, err2)
	assert.True(t, res2.Applied)
	assert.Equal(t, 4, f.store.snapshotCount("cmp-2"))
	assert.NotNil(t, f.store.campaign("cmp-2").Metrics)

	assert.Equal(t, 1, f.recorder.successes)
	assert.Len(t, f.recorder.failures, 1)
}

func TestSync_Credentials(t *testing.T) {
	userCreds := &domain.PlatformCredentials{Platform: domain.PlatformMeta, AccessToken: "user-token", AccountID: "999"}

	tests := []struct {
		name        string
		userCreds   *domain.PlatformCredentials
		fallback    *domain.PlatformCredentials
		wantErr     error
		wantToken   string
		wantFetches int
	}{
		{
			name:        "credenciais do usuário têm prioridade",
			userCreds:   userCreds,
			fallback:    metaCreds,
			wantToken:   "user-token",
			wantFetches: 1,
		},
		{
			name:        "usa credenciais globais sem cadastro do usuário",
			fallback:    metaCreds,
			wantToken:   "token",
			wantFetches: 1,
		},
		{
			name:        "sem credenciais não chama a plataforma",
			wantErr:     integrator.ErrMissingCredentials,
			wantFetches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, newFakeAdapter(scenarioBundle), tt.fallback, activeCampaign("cmp-1", 1))
			if tt.userCreds != nil {
				f.store.setCredentials(1, tt.userCreds)
			}

			c := f.store.campaign("cmp-1")
			result, err := f.orch.Sync(context.Background(), &c, TriggerScheduled)

			assert.Equal(t, tt.wantFetches, f.adapter.callCount("cmp-1"))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, result.EvaluationErr, ErrEvaluationSkipped)
				assert.Zero(t, f.store.snapshotCount("cmp-1"))
				assert.Nil(t, f.store.campaign("cmp-1").Metrics)
				return
			}

			require.NoError(t, err)
			require.Len(t, f.adapter.creds, 1)
			assert.Equal(t, tt.wantToken, f.adapter.creds[0].AccessToken)
		})
	}
}

func TestSync_StaleAttemptDiscarded(t *testing.T) {
	newer := activeCampaign("cmp-1", 1)
	newer.MetricsSyncSeq = syncNow.Add(time.Hour).UnixNano()
	kept := domain.MetricBundle{RawCounters: domain.RawCounters{Impressions: 7}}
	newer.Metrics = &kept

	f := newFixture(t, newFakeAdapter(scenarioBundle), metaCreds, newer)
	c := f.store.campaign("cmp-1")

	result, err := f.orch.Sync(context.Background(), &c, TriggerScheduled)
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Empty(t, result.Alerts)
	assert.Zero(t, f.store.snapshotCount("cmp-1"))
	assert.Zero(t, f.store.alertCount("cmp-1"))
	assert.Equal(t, kept, *f.store.campaign("cmp-1").Metrics)
	assert.Zero(t, f.recorder.successes)
}

func TestSync_Guards(t *testing.T) {
	paused := activeCampaign("cmp-2", 1)
	paused.Status = domain.CampaignStatusPaused

	f := newFixture(t, newFakeAdapter(scenarioBundle), metaCreds, activeCampaign("cmp-1", 1), paused)

	t.Run("campanha não ativa", func(t *testing.T) {
		c := f.store.campaign("cmp-2")
		_, err := f.orch.Sync(context.Background(), &c, TriggerScheduled)
		assert.ErrorIs(t, err, ErrCampaignNotActive)
	})

	t.Run("sincronização em andamento", func(t *testing.T) {
		unlock, ok, err := f.locker.TryLock(context.Background(), "cmp-1")
		require.NoError(t, err)
		require.True(t, ok)
		defer unlock()

		c := f.store.campaign("cmp-1")
		_, err = f.orch.Sync(context.Background(), &c, TriggerScheduled)
		assert.ErrorIs(t, err, ErrSyncInProgress)
		assert.Zero(t, f.adapter.callCount("cmp-1"))
	})

	t.Run("plataforma sem adaptador", func(t *testing.T) {
		other := activeCampaign("cmp-3", 1)
		other.Platform = domain.PlatformGoogleAds
		f.store.campaigns["cmp-3"] = other

		_, err := f.orch.Sync(context.Background(), &other, TriggerScheduled)
		assert.ErrorIs(t, err, integrator.ErrUnsupportedPlatform)
		assert.NotNil(t, f.store.campaign("cmp-3").LastSyncError)
	})
}

func TestForceSync(t *testing.T) {
	f := newFixture(t, newFakeAdapter(scenarioBundle), metaCreds, activeCampaign("cmp-1", 1))

	tests := []struct {
		name       string
		userID     int
		campaignID string
		wantErr    error
	}{
		{name: "campanha inexistente", userID: 1, campaignID: "nope", wantErr: ErrCampaignNotFound},
		{name: "campanha de outro usuário", userID: 2, campaignID: "cmp-1", wantErr: ErrCampaignNotFound},
		{name: "sucesso", userID: 1, campaignID: "cmp-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.orch.ForceSync(context.Background(), tt.userID, tt.campaignID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, TriggerManual, result.Trigger)
			assert.True(t, result.Applied)
		})
	}
}

func TestNextSeq_Monotonic(t *testing.T) {
	o := NewOrchestrator(Options{Now: func() time.Time { return syncNow }}).(*orchestrator)

	seen := make(map[int64]bool)
	var last int64
	for i := 0; i < 100; i++ {
		seq := o.nextSeq()
		assert.Greater(t, seq, last)
		assert.False(t, seen[seq])
		seen[seq] = true
		last = seq
	}
}
