package main

import (
	"context"
	"net/http"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/database/postgres"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator/googleads"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator/meta"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/live-performance-api/infrastructure/migration"
	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/infrastructure/synclock"
	"github.com/vfg2006/live-performance-api/internal/alerting"
	"github.com/vfg2006/live-performance-api/internal/api"
	"github.com/vfg2006/live-performance-api/internal/config"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/scheduler"
	"github.com/vfg2006/live-performance-api/internal/usecases/authenticating"
	"github.com/vfg2006/live-performance-api/internal/usecases/status"
	"github.com/vfg2006/live-performance-api/internal/usecases/syncing"
	"github.com/vfg2006/live-performance-api/pkg/monitoring"
	"github.com/vfg2006/live-performance-api/pkg/secrets"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migration.Up(cfg.Database.DSN); err != nil {
		logrus.WithError(err).Fatal("Erro ao aplicar migrações do banco")
	}

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	box, err := secrets.NewBox(cfg.Auth.Secret)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar a cifra de credenciais")
	}

	campaignRepo := repository.NewCampaignRepository(pgConn)
	snapshotRepo := repository.NewSnapshotRepository(pgConn)
	alertRepo := repository.NewAlertRepository(pgConn)
	credentialsRepo := repository.NewCredentialsRepository(pgConn, box)
	syncWriter := repository.NewSyncWriter(pgConn, campaignRepo, snapshotRepo, alertRepo)

	httpClient := &http.Client{Timeout: cfg.LiveSync.AdapterTimeout}

	registry := integrator.NewRegistry(
		meta.NewAdapter(metaclient.NewClient(cfg.Meta.URL, httpClient)),
		googleads.NewAdapter(googleads.Config{
			BaseURL:    cfg.GoogleAds.BaseURL,
			APIVersion: cfg.GoogleAds.APIVersion,
			TokenURL:   cfg.GoogleAds.TokenURL,
		}, httpClient),
	)

	fallback := fallbackCredentials(cfg)
	metrics := monitoring.New()
	locker := syncLocker(ctx, cfg.Redis)

	aggregator := status.NewAggregator(
		registry,
		campaignRepo,
		snapshotRepo,
		syncing.NewCredentialResolver(credentialsRepo, fallback),
		cfg.LiveSync.HealthCheckTimeout,
		metrics,
	)

	orchestrator := syncing.NewOrchestrator(syncing.Options{
		Registry:    registry,
		Campaigns:   campaignRepo,
		Credentials: credentialsRepo,
		Alerts:      alertRepo,
		Writer:      syncWriter,
		Evaluator:   alerting.NewEvaluator(alertRules(cfg.Alerts)),
		Locker:      locker,
		Recorder:    aggregator,
		Metrics:     metrics,
		Retry: integrator.RetryPolicy{
			Attempts:  cfg.LiveSync.RetryAttempts,
			BaseDelay: cfg.LiveSync.RetryBaseDelay,
			Timeout:   cfg.LiveSync.AdapterTimeout,
		},
		Fallback: fallback,
	})

	liveScheduler := scheduler.NewLivePerformanceScheduler(cfg.LiveSync, campaignRepo, orchestrator, metrics)
	aggregator.SetScheduler(liveScheduler)

	// Inicia o agendador em background
	if err := liveScheduler.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de performance ao vivo")
	} else {
		logrus.Info("Agendador de performance ao vivo iniciado com sucesso")
	}
	defer liveScheduler.Stop()

	server, err := api.New(
		cfg,
		authenticating.NewService(cfg.SecretKey),
		aggregator,
		liveScheduler,
		orchestrator,
		metrics.Handler(),
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// fallbackCredentials monta as credenciais de ambiente usadas quando o
// usuário não cadastrou as suas
func fallbackCredentials(cfg *config.Config) map[domain.Platform]*domain.PlatformCredentials {
	return map[domain.Platform]*domain.PlatformCredentials{
		domain.PlatformMeta: {
			Platform:    domain.PlatformMeta,
			AccessToken: cfg.Meta.AccessToken,
			AccountID:   cfg.Meta.AdAccountID,
		},
		domain.PlatformGoogleAds: {
			Platform:        domain.PlatformGoogleAds,
			AccountID:       cfg.GoogleAds.CustomerID,
			ClientID:        cfg.GoogleAds.ClientID,
			ClientSecret:    cfg.GoogleAds.ClientSecret,
			DeveloperToken:  cfg.GoogleAds.DeveloperToken,
			RefreshToken:    cfg.GoogleAds.RefreshToken,
			LoginCustomerID: cfg.GoogleAds.LoginCustomerID,
		},
	}
}

func alertRules(cfg config.Alerts) alerting.Rules {
	return alerting.Rules{
		LowCTRThreshold:            cfg.LowCTRThreshold,
		LowCTRMinImpressions:       cfg.LowCTRMinImpressions,
		HighCPCCeiling:             cfg.HighCPCCeiling,
		HighCPCMinClicks:           cfg.HighCPCMinClicks,
		LowROASThreshold:           cfg.LowROASThreshold,
		LowROASMinConversions:      cfg.LowROASMinConversions,
		LowConversionRateThreshold: cfg.LowConversionRateThreshold,
		LowConversionRateMinClicks: cfg.LowConversionRateMinClicks,
		Cooldown:                   cfg.Cooldown,
	}
}

// syncLocker usa Redis quando configurado para coordenar várias instâncias
func syncLocker(ctx context.Context, cfg config.Redis) synclock.Locker {
	if cfg.URL == "" {
		logrus.Info("REDIS_URL não configurada, usando lock de sincronização em memória")
		return synclock.NewMemoryLocker()
	}

	client, err := synclock.NewRedisClient(ctx, cfg.URL)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao Redis")
	}

	logrus.Info("Conexão com Redis estabelecida com sucesso")
	return synclock.NewRedisLocker(client, cfg.SyncLockTTL)
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
