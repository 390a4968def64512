package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/internal/config"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/usecases/syncing"
	"github.com/vfg2006/live-performance-api/pkg/monitoring"
	"golang.org/x/sync/errgroup"
)

// LivePerformanceScheduler sincroniza periodicamente as campanhas ativas dos
// usuários com o dashboard ao vivo aberto. Sem usuários ativos, nada é consultado.
type LivePerformanceScheduler struct {
	config       config.LiveSync
	campaigns    repository.CampaignRepository
	orchestrator syncing.Orchestrator
	metrics      *monitoring.Metrics
	now          func() time.Time

	mu           sync.Mutex
	scheduler    *gocron.Scheduler
	done         chan struct{}
	running      bool
	lastSyncTime *time.Time
	lastPass     *domain.PassSummary

	passMu sync.Mutex
	passes sync.WaitGroup

	usersMu     sync.RWMutex
	activeUsers map[int]time.Time
}

func NewLivePerformanceScheduler(
	cfg config.LiveSync,
	campaigns repository.CampaignRepository,
	orchestrator syncing.Orchestrator,
	metrics *monitoring.Metrics,
) *LivePerformanceScheduler {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}

	logrus.WithFields(logrus.Fields{
		"interval":            cfg.Interval.String(),
		"max_concurrent_jobs": cfg.MaxConcurrentJobs,
		"active_user_ttl":     cfg.ActiveUserTTL.String(),
		"sync_enabled":        cfg.Enabled,
	}).Info("Configuração do agendador de performance ao vivo carregada")

	return &LivePerformanceScheduler{
		config:       cfg,
		campaigns:    campaigns,
		orchestrator: orchestrator,
		metrics:      metrics,
		now:          time.Now,
		activeUsers:  make(map[int]time.Time),
	}
}

// Start agenda o ciclo periódico com a primeira execução imediata.
// Chamar Start com o agendador já rodando não cria outro timer.
func (s *LivePerformanceScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Sincronização de performance ao vivo desabilitada por configuração")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logrus.Info("Agendador de performance ao vivo já está em execução, ignorando")
		return nil
	}

	sched := gocron.NewScheduler(time.Local)

	_, err := sched.Every(s.config.Interval).SingletonMode().StartImmediately().Do(s.scheduledPass)
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de performance ao vivo: %w", err)
	}

	done := make(chan struct{})
	s.scheduler = sched
	s.done = done
	s.running = true
	sched.StartAsync()

	logrus.WithField("interval", s.config.Interval.String()).Info("Agendador de performance ao vivo iniciado")

	go func() {
		select {
		case <-ctx.Done():
			s.stop(sched)
		case <-done:
		}
	}()

	return nil
}

// Stop impede novos ciclos e espera o ciclo em andamento terminar
func (s *LivePerformanceScheduler) Stop() {
	s.mu.Lock()
	sched := s.scheduler
	s.mu.Unlock()

	s.stop(sched)
}

func (s *LivePerformanceScheduler) stop(sched *gocron.Scheduler) {
	s.mu.Lock()
	if !s.running || sched == nil || s.scheduler != sched {
		s.mu.Unlock()
		return
	}
	s.scheduler = nil
	s.running = false
	close(s.done)
	s.done = nil
	s.mu.Unlock()

	logrus.Info("Parando agendador de performance ao vivo")

	// fora do lock: o ciclo em andamento precisa dele para registrar o resumo
	sched.Stop()
	s.passes.Wait()
}

func (s *LivePerformanceScheduler) jobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return 0
	}
	return s.scheduler.Len()
}

func (s *LivePerformanceScheduler) AddActiveUser(userID int) {
	s.usersMu.Lock()
	_, existed := s.activeUsers[userID]
	s.activeUsers[userID] = s.now()
	count := len(s.activeUsers)
	s.usersMu.Unlock()

	s.metrics.SetActiveUsers(count)

	if !existed {
		logrus.WithFields(logrus.Fields{
			"user_id":      userID,
			"active_users": count,
		}).Info("Usuário adicionado à sincronização ao vivo")
	}
}

func (s *LivePerformanceScheduler) RemoveActiveUser(userID int) {
	s.usersMu.Lock()
	_, existed := s.activeUsers[userID]
	delete(s.activeUsers, userID)
	count := len(s.activeUsers)
	s.usersMu.Unlock()

	s.metrics.SetActiveUsers(count)

	if existed {
		logrus.WithFields(logrus.Fields{
			"user_id":      userID,
			"active_users": count,
		}).Info("Usuário removido da sincronização ao vivo")
	}
}

// TouchActiveUser renova a presença de um usuário já ativo
func (s *LivePerformanceScheduler) TouchActiveUser(userID int) bool {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	if _, ok := s.activeUsers[userID]; !ok {
		return false
	}
	s.activeUsers[userID] = s.now()
	return true
}

// ActiveUsers remove usuários inativos há mais que o TTL e devolve os demais em ordem
func (s *LivePerformanceScheduler) ActiveUsers() []int {
	now := s.now()

	s.usersMu.Lock()
	var expired []int
	users := make([]int, 0, len(s.activeUsers))
	for id, seen := range s.activeUsers {
		if s.config.ActiveUserTTL > 0 && now.Sub(seen) > s.config.ActiveUserTTL {
			delete(s.activeUsers, id)
			expired = append(expired, id)
			continue
		}
		users = append(users, id)
	}
	s.usersMu.Unlock()

	if len(expired) > 0 {
		logrus.WithField("user_ids", expired).Info("Usuários sem atividade removidos da sincronização ao vivo")
	}

	sort.Ints(users)
	return users
}

// TriggerPass executa um ciclo fora do intervalo. Ignorado com o agendador
// parado ou com um ciclo em andamento.
func (s *LivePerformanceScheduler) TriggerPass() bool {
	if !s.passMu.TryLock() {
		logrus.Info("Ciclo de performance ao vivo já em andamento, ignorando solicitação manual")
		return false
	}
	s.passMu.Unlock()

	if !s.acquirePass() {
		logrus.Info("Agendador de performance ao vivo parado, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando ciclo manual de performance ao vivo")
	go func() {
		defer s.passes.Done()
		s.runPass()
	}()

	return true
}

// acquirePass registra um ciclo em s.passes enquanto o agendador está rodando.
// Depois do Stop nenhum ciclo novo é registrado, então o Wait não concorre com Add.
func (s *LivePerformanceScheduler) acquirePass() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	s.passes.Add(1)
	return true
}

func (s *LivePerformanceScheduler) scheduledPass() {
	if !s.acquirePass() {
		return
	}
	defer s.passes.Done()

	s.runPass()
}

func (s *LivePerformanceScheduler) Status() domain.ServiceStatus {
	s.usersMu.RLock()
	activeUsers := len(s.activeUsers)
	s.usersMu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.ServiceStatus{
		Running:         s.running,
		IntervalSeconds: int64(s.config.Interval / time.Second),
		LastSyncTime:    s.lastSyncTime,
		ActiveUsers:     activeUsers,
		LastPass:        s.lastPass,
	}
}

func (s *LivePerformanceScheduler) runPass() {
	if !s.passMu.TryLock() {
		logrus.Info("Ciclo de performance ao vivo já em andamento, ignorando")
		return
	}
	defer s.passMu.Unlock()

	startedAt := s.now()

	users := s.ActiveUsers()
	s.metrics.SetActiveUsers(len(users))

	if len(users) == 0 {
		logrus.Debug("Nenhum usuário ativo, ciclo de performance ao vivo ignorado")
		return
	}

	// desacoplado do Stop: o ciclo em andamento termina, limitado ao intervalo
	timeout := s.config.Interval
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	campaigns, err := s.campaigns.ListActiveByUsers(ctx, users)
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar campanhas ativas para sincronização ao vivo")
		return
	}

	var succeeded, failed, skipped atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(s.config.MaxConcurrentJobs)

	for _, campaign := range campaigns {
		campaign := campaign
		g.Go(func() error {
			switch s.syncCampaign(ctx, campaign) {
			case passSucceeded:
				succeeded.Add(1)
			case passSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			// falha de uma campanha nunca interrompe as demais
			return nil
		})
	}
	_ = g.Wait()

	finishedAt := s.now()
	summary := &domain.PassSummary{
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Campaigns:  len(campaigns),
		Succeeded:  int(succeeded.Load()),
		Failed:     int(failed.Load()),
		Skipped:    int(skipped.Load()),
	}

	s.mu.Lock()
	s.lastSyncTime = &finishedAt
	s.lastPass = summary
	s.mu.Unlock()

	s.metrics.RecordPass(finishedAt.Sub(startedAt), summary.Succeeded, summary.Failed, summary.Skipped)

	logrus.WithFields(logrus.Fields{
		"duration":  finishedAt.Sub(startedAt).String(),
		"users":     len(users),
		"campaigns": summary.Campaigns,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
	}).Info("Ciclo de performance ao vivo concluído")
}

type passOutcome int

const (
	passSucceeded passOutcome = iota
	passFailed
	passSkipped
)

func (s *LivePerformanceScheduler) syncCampaign(ctx context.Context, campaign *domain.Campaign) (outcome passOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"campaign_id": campaign.ID,
				"panic":       r,
			}).Error("Panic durante sincronização de campanha")
			outcome = passFailed
		}
	}()

	result, err := s.orchestrator.Sync(ctx, campaign, syncing.TriggerScheduled)
	switch {
	case errors.Is(err, syncing.ErrSyncInProgress):
		return passSkipped
	case err != nil:
		return passFailed
	case result != nil && !result.Applied:
		return passSkipped
	default:
		return passSucceeded
	}
}
