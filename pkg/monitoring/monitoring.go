// Package monitoring reúne os coletores Prometheus do serviço
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "live_performance"

type Metrics struct {
	registry *prometheus.Registry

	SyncAttempts      *prometheus.CounterVec
	SyncDuration      *prometheus.HistogramVec
	PassDuration      prometheus.Histogram
	PassCampaigns     *prometheus.CounterVec
	AlertsRaised      *prometheus.CounterVec
	ActiveUsers       prometheus.Gauge
	PlatformConnected *prometheus.GaugeVec
}

// New registra os coletores num registry próprio (um por processo ou por teste)
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SyncAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_attempts_total",
				Help:      "Tentativas de sincronização por plataforma e resultado",
			},
			[]string{"platform", "outcome"},
		),
		SyncDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Duração de uma sincronização de campanha",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"platform"},
		),
		PassDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_pass_duration_seconds",
				Help:      "Duração de um ciclo completo do agendador",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
			},
		),
		PassCampaigns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_pass_campaigns_total",
				Help:      "Campanhas processadas pelos ciclos do agendador por resultado",
			},
			[]string{"outcome"},
		),
		AlertsRaised: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_raised_total",
				Help:      "Alertas gerados por tipo e severidade",
			},
			[]string{"type", "severity"},
		),
		ActiveUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_users",
				Help:      "Usuários com dashboard ao vivo aberto",
			},
		),
		PlatformConnected: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "platform_connected",
				Help:      "1 quando a última verificação da plataforma teve sucesso",
			},
			[]string{"platform"},
		),
	}
}

func (m *Metrics) RecordSync(platform, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SyncAttempts.WithLabelValues(platform, outcome).Inc()
	m.SyncDuration.WithLabelValues(platform).Observe(d.Seconds())
}

func (m *Metrics) RecordPass(d time.Duration, succeeded, failed, skipped int) {
	if m == nil {
		return
	}
	m.PassDuration.Observe(d.Seconds())
	m.PassCampaigns.WithLabelValues("success").Add(float64(succeeded))
	m.PassCampaigns.WithLabelValues("failure").Add(float64(failed))
	m.PassCampaigns.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) RecordAlert(alertType, severity string) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(alertType, severity).Inc()
}

func (m *Metrics) SetActiveUsers(n int) {
	if m == nil {
		return
	}
	m.ActiveUsers.Set(float64(n))
}

func (m *Metrics) SetPlatformConnected(platform string, connected bool) {
	if m == nil {
		return
	}
	v := 0.0
	if connected {
		v = 1
	}
	m.PlatformConnected.WithLabelValues(platform).Set(v)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
