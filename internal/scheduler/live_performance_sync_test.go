package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/infrastructure/repository/mocks"
	"github.com/vfg2006/live-performance-api/internal/config"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/usecases/syncing"
	"go.uber.org/mock/gomock"
)

type fakeOrchestrator struct {
	mu          sync.Mutex
	calls       []string
	deadlines   int
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	sync        func(campaign *domain.Campaign) (*syncing.SyncResult, error)
}

func (f *fakeOrchestrator) Sync(ctx context.Context, campaign *domain.Campaign, _ syncing.Trigger) (*syncing.SyncResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, campaign.ID)
	if _, ok := ctx.Deadline(); ok {
		f.deadlines++
	}
	f.mu.Unlock()

	if f.sync == nil {
		return &syncing.SyncResult{CampaignID: campaign.ID, Applied: true}, nil
	}
	return f.sync(campaign)
}

func (f *fakeOrchestrator) ForceSync(context.Context, int, string) (*syncing.SyncResult, error) {
	return nil, errors.New("não usado")
}

func (f *fakeOrchestrator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func liveSyncConfig() config.LiveSync {
	return config.LiveSync{
		Enabled:           true,
		Interval:          time.Hour,
		MaxConcurrentJobs: 4,
		ActiveUserTTL:     30 * time.Minute,
	}
}

func campaignsFor(ids ...string) []*domain.Campaign {
	out := make([]*domain.Campaign, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.Campaign{ID: id, UserID: 1, Platform: domain.PlatformMeta, Status: domain.CampaignStatusActive})
	}
	return out
}

// markRunning simula o agendador ativo sem registrar o job no gocron
func markRunning(s *LivePerformanceScheduler) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
}

func TestLivePerformanceScheduler_StartTwiceKeepsOneTimer(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCampaignRepository(ctrl)

	s := NewLivePerformanceScheduler(liveSyncConfig(), repo, &fakeOrchestrator{}, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, 1, s.jobCount())
	assert.True(t, s.Status().Running)
	assert.Equal(t, int64(3600), s.Status().IntervalSeconds)

	s.Stop()
	assert.False(t, s.Status().Running)
	assert.Equal(t, 0, s.jobCount())

	// reinício depois do Stop cria um único timer novo
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 1, s.jobCount())
	s.Stop()
}

func TestLivePerformanceScheduler_Disabled(t *testing.T) {
	cfg := liveSyncConfig()
	cfg.Enabled = false

	s := NewLivePerformanceScheduler(cfg, nil, &fakeOrchestrator{}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 0, s.jobCount())
	assert.False(t, s.Status().Running)
}

func TestLivePerformanceScheduler_StopsWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewLivePerformanceScheduler(liveSyncConfig(), mocks.NewMockCampaignRepository(ctrl), &fakeOrchestrator{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()

	assert.Eventually(t, func() bool { return !s.Status().Running }, time.Second, 10*time.Millisecond)
}

func TestLivePerformanceScheduler_runPass(t *testing.T) {
	tests := []struct {
		name      string
		users     []int
		setup     func(repo *mocks.MockCampaignRepository)
		sync      func(c *domain.Campaign) (*syncing.SyncResult, error)
		wantCalls int
		wantPass  *domain.PassSummary
	}{
		{
			name:      "sem usuários ativos não consulta campanhas",
			wantCalls: 0,
		},
		{
			name:  "falha de uma campanha não afeta as demais",
			users: []int{2, 1},
			setup: func(repo *mocks.MockCampaignRepository) {
				repo.EXPECT().ListActiveByUsers(gomock.Any(), []int{1, 2}).
					Return(campaignsFor("c1", "c2", "c3", "c4", "c5"), nil)
			},
			sync: func(c *domain.Campaign) (*syncing.SyncResult, error) {
				switch c.ID {
				case "c1":
					return &syncing.SyncResult{EvaluationErr: syncing.ErrEvaluationSkipped},
						integrator.NewAdapterError(integrator.ErrAuth, domain.PlatformMeta, errors.New("token expirado"))
				case "c3":
					panic("adaptador quebrado")
				case "c4":
					return nil, syncing.ErrSyncInProgress
				case "c5":
					return &syncing.SyncResult{Applied: false}, nil
				}
				return &syncing.SyncResult{Applied: true}, nil
			},
			wantCalls: 5,
			wantPass:  &domain.PassSummary{Campaigns: 5, Succeeded: 1, Failed: 2, Skipped: 2},
		},
		{
			name:  "erro ao listar campanhas encerra o ciclo",
			users: []int{1},
			setup: func(repo *mocks.MockCampaignRepository) {
				repo.EXPECT().ListActiveByUsers(gomock.Any(), []int{1}).Return(nil, errors.New("conexão recusada"))
			},
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockCampaignRepository(ctrl)
			if tt.setup != nil {
				tt.setup(repo)
			}

			orch := &fakeOrchestrator{sync: tt.sync}
			s := NewLivePerformanceScheduler(liveSyncConfig(), repo, orch, nil)
			for _, u := range tt.users {
				s.AddActiveUser(u)
			}

			s.runPass()

			assert.Equal(t, tt.wantCalls, orch.callCount())
			assert.Equal(t, tt.wantCalls, orch.deadlines, "toda sincronização roda com prazo")

			status := s.Status()
			if tt.wantPass == nil {
				assert.Nil(t, status.LastPass)
				assert.Nil(t, status.LastSyncTime)
				return
			}

			require.NotNil(t, status.LastPass)
			require.NotNil(t, status.LastSyncTime)
			assert.Equal(t, tt.wantPass.Campaigns, status.LastPass.Campaigns)
			assert.Equal(t, tt.wantPass.Succeeded, status.LastPass.Succeeded)
			assert.Equal(t, tt.wantPass.Failed, status.LastPass.Failed)
			assert.Equal(t, tt.wantPass.Skipped, status.LastPass.Skipped)
		})
	}
}

func TestLivePerformanceScheduler_ConcurrencyLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCampaignRepository(ctrl)

	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%d", i)
	}
	repo.EXPECT().ListActiveByUsers(gomock.Any(), []int{1}).Return(campaignsFor(ids...), nil)

	orch := &fakeOrchestrator{sync: func(*domain.Campaign) (*syncing.SyncResult, error) {
		time.Sleep(20 * time.Millisecond)
		return &syncing.SyncResult{Applied: true}, nil
	}}

	cfg := liveSyncConfig()
	cfg.MaxConcurrentJobs = 2
	s := NewLivePerformanceScheduler(cfg, repo, orch, nil)
	s.AddActiveUser(1)

	s.runPass()

	assert.Equal(t, 8, orch.callCount())
	assert.LessOrEqual(t, orch.maxInFlight.Load(), int32(2))
	assert.Equal(t, 8, s.Status().LastPass.Succeeded)
}

func TestLivePerformanceScheduler_ActiveUsers(t *testing.T) {
	s := NewLivePerformanceScheduler(liveSyncConfig(), nil, &fakeOrchestrator{}, nil)

	t0 := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	now := t0
	s.now = func() time.Time { return now }

	s.AddActiveUser(1)
	now = t0.Add(20 * time.Minute)
	s.AddActiveUser(2)
	s.AddActiveUser(3)
	s.RemoveActiveUser(3)
	s.RemoveActiveUser(99)

	assert.Equal(t, []int{1, 2}, s.ActiveUsers())
	assert.Equal(t, 2, s.Status().ActiveUsers)

	// usuário 1 passou do TTL
	now = t0.Add(31 * time.Minute)
	assert.Equal(t, []int{2}, s.ActiveUsers())
	assert.False(t, s.TouchActiveUser(1))

	now = t0.Add(45 * time.Minute)
	assert.True(t, s.TouchActiveUser(2))
	now = t0.Add(70 * time.Minute)
	assert.Equal(t, []int{2}, s.ActiveUsers(), "touch renova a presença")
}

func TestLivePerformanceScheduler_TriggerPassIgnoredWhileRunning(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().ListActiveByUsers(gomock.Any(), []int{1}).Return(campaignsFor("c1"), nil).Times(1)

	started := make(chan struct{})
	release := make(chan struct{})
	orch := &fakeOrchestrator{sync: func(*domain.Campaign) (*syncing.SyncResult, error) {
		close(started)
		<-release
		return &syncing.SyncResult{Applied: true}, nil
	}}

	s := NewLivePerformanceScheduler(liveSyncConfig(), repo, orch, nil)
	s.AddActiveUser(1)
	markRunning(s)

	done := make(chan struct{})
	go func() {
		s.runPass()
		close(done)
	}()

	<-started
	assert.False(t, s.TriggerPass())

	close(release)
	<-done

	assert.Equal(t, 1, orch.callCount())
	assert.Equal(t, 1, s.Status().LastPass.Succeeded)
}

func TestLivePerformanceScheduler_TriggerPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().ListActiveByUsers(gomock.Any(), []int{1}).Return(campaignsFor("c1"), nil).Times(1)

	orch := &fakeOrchestrator{}
	s := NewLivePerformanceScheduler(liveSyncConfig(), repo, orch, nil)
	s.AddActiveUser(1)

	assert.False(t, s.TriggerPass(), "agendador nunca iniciado")

	markRunning(s)
	require.True(t, s.TriggerPass())
	assert.Eventually(t, func() bool { return orch.callCount() == 1 }, time.Second, 10*time.Millisecond)
	s.passes.Wait()
}

func TestLivePerformanceScheduler_NoPassAfterStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCampaignRepository(ctrl)

	orch := &fakeOrchestrator{}
	s := NewLivePerformanceScheduler(liveSyncConfig(), repo, orch, nil)

	// sem usuários ativos o ciclo imediato não consulta o repositório
	require.NoError(t, s.Start(context.Background()))

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	require.NotNil(t, done)

	s.Stop()

	select {
	case <-done:
	default:
		t.Fatal("Stop deve liberar a goroutine que observa o contexto")
	}

	s.AddActiveUser(1)
	assert.False(t, s.TriggerPass())
	s.scheduledPass()
	assert.Zero(t, orch.callCount())
}
