package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	integratormocks "github.com/vfg2006/live-performance-api/infrastructure/integrator/mocks"
	repomocks "github.com/vfg2006/live-performance-api/infrastructure/repository/mocks"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/usecases/syncing"
	"go.uber.org/mock/gomock"
)

type fakeScheduler struct {
	status domain.ServiceStatus
}

func (f fakeScheduler) Status() domain.ServiceStatus { return f.status }

type aggregatorMocks struct {
	meta      *integratormocks.MockAdapter
	google    *integratormocks.MockAdapter
	campaigns *repomocks.MockCampaignRepository
	snapshots *repomocks.MockSnapshotRepository
	creds     *repomocks.MockCredentialsRepository
}

func newAggregator(t *testing.T, fallback map[domain.Platform]*domain.PlatformCredentials) (*Aggregator, aggregatorMocks) {
	ctrl := gomock.NewController(t)

	m := aggregatorMocks{
		meta:      integratormocks.NewMockAdapter(ctrl),
		google:    integratormocks.NewMockAdapter(ctrl),
		campaigns: repomocks.NewMockCampaignRepository(ctrl),
		snapshots: repomocks.NewMockSnapshotRepository(ctrl),
		creds:     repomocks.NewMockCredentialsRepository(ctrl),
	}
	m.meta.EXPECT().Platform().Return(domain.PlatformMeta).AnyTimes()
	m.google.EXPECT().Platform().Return(domain.PlatformGoogleAds).AnyTimes()

	agg := NewAggregator(
		integrator.NewRegistry(m.meta, m.google),
		m.campaigns,
		m.snapshots,
		syncing.NewCredentialResolver(m.creds, fallback),
		50*time.Millisecond,
		nil,
	)

	return agg, m
}

func bundle(impressions, clicks int64, conversions, spend, revenue float64) *domain.MetricBundle {
	return &domain.MetricBundle{RawCounters: domain.RawCounters{
		Impressions: impressions, Clicks: clicks, Conversions: conversions, Spend: spend, Revenue: revenue,
	}}
}

func TestLive(t *testing.T) {
	agg, m := newAggregator(t, nil)
	agg.SetScheduler(fakeScheduler{status: domain.ServiceStatus{Running: true, IntervalSeconds: 300, ActiveUsers: 2}})

	syncedAt := time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)
	failedAt := syncedAt.Add(5 * time.Minute)
	syncErr := "meta: auth token expirado"

	agg.RecordSuccess(1, domain.PlatformMeta, syncedAt)
	agg.RecordFailure(1, domain.PlatformGoogleAds, integrator.NewAdapterError(integrator.ErrTransient, domain.PlatformGoogleAds, errors.New("503")), failedAt)

	m.campaigns.EXPECT().ListByUser(gomock.Any(), 1, domain.CampaignStatusActive).Return([]*domain.Campaign{
		{ID: "c1", UserID: 1, Platform: domain.PlatformMeta, Status: domain.CampaignStatusActive, Metrics: bundle(1000, 10, 1, 20, 40), LastSyncedAt: &syncedAt},
		{ID: "c2", UserID: 1, Platform: domain.PlatformMeta, Status: domain.CampaignStatusActive, Metrics: bundle(3000, 20, 2, 40, 60), LastSyncedAt: &syncedAt, LastSyncError: &syncErr, LastSyncErrorAt: &failedAt},
		{ID: "c3", UserID: 1, Platform: domain.PlatformGoogleAds, Status: domain.CampaignStatusActive},
	}, nil)

	resp, err := agg.Live(context.Background(), 1)
	require.NoError(t, err)

	// plataformas com estado conhecido não disparam health check
	require.Len(t, resp.Platforms, 2)
	assert.Equal(t, domain.PlatformGoogleAds, resp.Platforms[0].Platform)
	assert.Equal(t, domain.ConnectionStateError, resp.Platforms[0].Status)
	assert.Equal(t, domain.ConnectionStateConnected, resp.Platforms[1].Status)
	assert.Equal(t, syncedAt, *resp.Platforms[1].LastSuccessfulSync)

	assert.Equal(t, int64(4000), resp.Totals.Impressions)
	assert.Equal(t, int64(30), resp.Totals.Clicks)
	assert.Equal(t, 0.75, resp.Totals.CTR, "recalculado, não média de CTRs")
	assert.Equal(t, 2.0, resp.Totals.CPC)
	assert.Equal(t, 1.67, resp.Totals.ROAS)

	require.Len(t, resp.PlatformTotals, 2)
	assert.Equal(t, domain.PlatformGoogleAds, resp.PlatformTotals[0].Platform)
	assert.Equal(t, 1, resp.PlatformTotals[0].Campaigns)
	assert.True(t, resp.PlatformTotals[0].Metrics.IsEmpty())
	assert.Equal(t, 2, resp.PlatformTotals[1].Campaigns)
	assert.Equal(t, int64(4000), resp.PlatformTotals[1].Metrics.Impressions)

	require.Len(t, resp.Campaigns, 3)
	assert.False(t, resp.Campaigns[0].Stale)
	assert.Nil(t, resp.Campaigns[0].SyncError)
	assert.True(t, resp.Campaigns[1].Stale)
	assert.Equal(t, syncErr, *resp.Campaigns[1].SyncError)
	assert.Equal(t, 0.67, resp.Campaigns[1].Metrics.CTR)
	assert.Nil(t, resp.Campaigns[2].Metrics)

	assert.True(t, resp.ServiceStatus.Running)
	assert.Equal(t, 2, resp.ServiceStatus.ActiveUsers)
}

func TestStatus(t *testing.T) {
	fallback := map[domain.Platform]*domain.PlatformCredentials{
		domain.PlatformGoogleAds: {Platform: domain.PlatformGoogleAds, ClientID: "id", RefreshToken: "rt", DeveloperToken: "dev"},
	}
	agg, m := newAggregator(t, fallback)

	userMeta := &domain.PlatformCredentials{Platform: domain.PlatformMeta, AccessToken: "tok", AccountID: "1"}
	m.creds.EXPECT().Get(gomock.Any(), 1, domain.PlatformMeta).Return(userMeta, nil)
	m.creds.EXPECT().Get(gomock.Any(), 1, domain.PlatformGoogleAds).Return(nil, nil)

	m.meta.EXPECT().HealthCheck(gomock.Any(), userMeta).Return(nil)
	m.google.EXPECT().HealthCheck(gomock.Any(), fallback[domain.PlatformGoogleAds]).
		Return(integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformGoogleAds, errors.New("invalid_grant")))

	resp := agg.Status(context.Background(), 1)

	require.Len(t, resp.Platforms, 2)
	assert.Equal(t, domain.ConnectionStateError, resp.Platforms[0].Status)
	require.NotNil(t, resp.Platforms[0].LastError)
	assert.Contains(t, *resp.Platforms[0].LastError, "invalid_grant")
	assert.Equal(t, domain.ConnectionStateConnected, resp.Platforms[1].Status)
	assert.Equal(t, []domain.Platform{domain.PlatformMeta}, resp.ConnectedPlatforms)
	assert.False(t, resp.ServiceStatus.Running, "sem agendador")
}

func TestStatus_NotConfiguredSkipsHealthCheck(t *testing.T) {
	agg, m := newAggregator(t, nil)

	m.creds.EXPECT().Get(gomock.Any(), 7, gomock.Any()).Return(nil, nil).Times(2)
	m.meta.EXPECT().HealthCheck(gomock.Any(), gomock.Any()).Times(0)
	m.google.EXPECT().HealthCheck(gomock.Any(), gomock.Any()).Times(0)

	resp := agg.Status(context.Background(), 7)

	for _, p := range resp.Platforms {
		assert.Equal(t, domain.ConnectionStateNotConfigured, p.Status, p.Platform)
	}
	assert.Empty(t, resp.ConnectedPlatforms)
}

func TestTestConnection(t *testing.T) {
	creds := &domain.PlatformCredentials{Platform: domain.PlatformMeta, AccessToken: "tok", AccountID: "1"}

	tests := []struct {
		name        string
		platform    domain.Platform
		setup       func(m aggregatorMocks)
		wantErr     error
		wantStatus  domain.ConnectionState
		wantMessage string
	}{
		{
			name:     "plataforma desconhecida",
			platform: domain.Platform("tiktok"),
			wantErr:  integrator.ErrUnsupportedPlatform,
		},
		{
			name:     "conectado",
			platform: domain.PlatformMeta,
			setup: func(m aggregatorMocks) {
				m.creds.EXPECT().Get(gomock.Any(), 1, domain.PlatformMeta).Return(creds, nil)
				m.meta.EXPECT().HealthCheck(gomock.Any(), creds).Return(nil)
			},
			wantStatus:  domain.ConnectionStateConnected,
			wantMessage: "Conexão estabelecida com sucesso",
		},
		{
			name:     "health check estoura o timeout",
			platform: domain.PlatformMeta,
			setup: func(m aggregatorMocks) {
				m.creds.EXPECT().Get(gomock.Any(), 1, domain.PlatformMeta).Return(creds, nil)
				m.meta.EXPECT().HealthCheck(gomock.Any(), creds).DoAndReturn(
					func(ctx context.Context, _ *domain.PlatformCredentials) error {
						<-ctx.Done()
						return ctx.Err()
					},
				)
			},
			wantStatus:  domain.ConnectionStateError,
			wantMessage: context.DeadlineExceeded.Error(),
		},
		{
			name:     "sem credenciais",
			platform: domain.PlatformGoogleAds,
			setup: func(m aggregatorMocks) {
				m.creds.EXPECT().Get(gomock.Any(), 1, domain.PlatformGoogleAds).Return(nil, nil)
			},
			wantStatus:  domain.ConnectionStateNotConfigured,
			wantMessage: "Credenciais da plataforma não configuradas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, m := newAggregator(t, nil)
			if tt.setup != nil {
				tt.setup(m)
			}

			result, err := agg.TestConnection(context.Background(), 1, tt.platform)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.platform, result.Platform)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantMessage, result.Message)
		})
	}
}

func TestHourlyTrends(t *testing.T) {
	date := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	hour := func(h int) *int { return &h }

	t.Run("soma as campanhas por hora em ordem crescente", func(t *testing.T) {
		agg, m := newAggregator(t, nil)

		m.campaigns.EXPECT().ListByUser(gomock.Any(), 1, domain.CampaignStatusActive).
			Return([]*domain.Campaign{{ID: "c1", UserID: 1}, {ID: "c2", UserID: 1}}, nil)
		m.snapshots.EXPECT().ListHourlyByCampaigns(gomock.Any(), []string{"c1", "c2"}, date).
			Return([]*domain.PerformanceSnapshot{
				{SnapshotKey: domain.SnapshotKey{CampaignID: "c1", Hour: hour(14)}, Metrics: *bundle(500, 5, 0, 10, 0)},
				{SnapshotKey: domain.SnapshotKey{CampaignID: "c1", Hour: hour(9)}, Metrics: *bundle(100, 1, 0, 2, 0)},
				{SnapshotKey: domain.SnapshotKey{CampaignID: "c2", Hour: hour(14)}, Metrics: *bundle(500, 15, 0, 30, 0)},
			}, nil)

		points, err := agg.HourlyTrends(context.Background(), 1, date, "")
		require.NoError(t, err)

		require.Len(t, points, 2)
		assert.Equal(t, 9, points[0].Hour)
		assert.Equal(t, "2026-10-14", points[0].Date)
		assert.Equal(t, 14, points[1].Hour)
		assert.Equal(t, int64(1000), points[1].Metrics.Impressions)
		assert.Equal(t, 2.0, points[1].Metrics.CTR)
		assert.Equal(t, 2.0, points[1].Metrics.CPC)
	})

	t.Run("campanha de outro usuário", func(t *testing.T) {
		agg, m := newAggregator(t, nil)
		m.campaigns.EXPECT().GetByID(gomock.Any(), "c9").Return(&domain.Campaign{ID: "c9", UserID: 2}, nil)

		_, err := agg.HourlyTrends(context.Background(), 1, date, "c9")
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})

	t.Run("sem campanhas ativas", func(t *testing.T) {
		agg, m := newAggregator(t, nil)
		m.campaigns.EXPECT().ListByUser(gomock.Any(), 1, domain.CampaignStatusActive).Return(nil, nil)

		points, err := agg.HourlyTrends(context.Background(), 1, date, "")
		require.NoError(t, err)
		assert.NotNil(t, points)
		assert.Empty(t, points)
	})
}

func TestRecordFailure_MissingCredentials(t *testing.T) {
	agg, _ := newAggregator(t, nil)
	at := time.Now()

	agg.RecordFailure(7, domain.PlatformMeta, integrator.MissingCredentials(domain.PlatformMeta, "access_token"), at)

	key := connectionKey{userID: 7, platform: domain.PlatformMeta}
	st := agg.platforms[key]
	assert.Equal(t, domain.ConnectionStateNotConfigured, st.Status)
	assert.Nil(t, st.LastSuccessfulSync)

	agg.RecordSuccess(7, domain.PlatformMeta, at)
	st = agg.platforms[key]
	assert.Equal(t, domain.ConnectionStateConnected, st.Status)
	assert.Nil(t, st.LastError)
}

func TestConnectionStateIsPerUser(t *testing.T) {
	agg, m := newAggregator(t, nil)
	ctx := context.Background()

	userMeta := &domain.PlatformCredentials{Platform: domain.PlatformMeta, AccessToken: "tok", AccountID: "1"}
	m.creds.EXPECT().Get(gomock.Any(), 2, domain.PlatformMeta).Return(userMeta, nil)
	m.creds.EXPECT().Get(gomock.Any(), 2, domain.PlatformGoogleAds).Return(nil, nil)
	m.meta.EXPECT().HealthCheck(gomock.Any(), userMeta).Return(nil)

	other := agg.Status(ctx, 2)
	assert.Equal(t, []domain.Platform{domain.PlatformMeta}, other.ConnectedPlatforms)

	// usuário 1 não tem credenciais: o estado do usuário 2 não pode vazar
	m.creds.EXPECT().Get(gomock.Any(), 1, domain.PlatformMeta).Return(nil, nil)
	m.creds.EXPECT().Get(gomock.Any(), 1, domain.PlatformGoogleAds).Return(nil, nil)
	m.campaigns.EXPECT().ListByUser(gomock.Any(), 1, domain.CampaignStatusActive).Return(nil, nil)

	live, err := agg.Live(ctx, 1)
	require.NoError(t, err)
	require.Len(t, live.Platforms, 2)
	assert.Equal(t, domain.ConnectionStateNotConfigured, live.Platforms[0].Status)
	assert.Equal(t, domain.ConnectionStateNotConfigured, live.Platforms[1].Status)

	// falha de sincronização do usuário 1 não afeta o usuário 2
	agg.RecordFailure(1, domain.PlatformMeta, integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformMeta, errors.New("token expirado")), time.Now())

	m.campaigns.EXPECT().ListByUser(gomock.Any(), 2, domain.CampaignStatusActive).Return(nil, nil)

	live, err = agg.Live(ctx, 2)
	require.NoError(t, err)
	require.Len(t, live.Platforms, 2)
	assert.Equal(t, domain.ConnectionStateNotConfigured, live.Platforms[0].Status)
	assert.Equal(t, domain.ConnectionStateConnected, live.Platforms[1].Status)
	assert.Nil(t, live.Platforms[1].LastError)
}
