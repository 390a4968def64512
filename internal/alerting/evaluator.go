// Package alerting avalia as métricas de uma campanha contra o conjunto de regras
package alerting

import (
	"fmt"
	"time"

	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/performance"
	"github.com/vfg2006/live-performance-api/pkg/utils"
)

type rule struct {
	alertType domain.AlertType
	severity  domain.AlertSeverity
	metric    string
	threshold func(Rules) float64
	applies   func(Rules, domain.MetricBundle) bool
	value     func(domain.MetricBundle) float64
	message   func(c domain.CampaignContext, value, threshold float64) string
	suggest   string
}

var ruleSet = []rule{
	{
		alertType: domain.AlertTypeLowCTR,
		severity:  domain.AlertSeverityWarning,
		metric:    "ctr",
		threshold: func(r Rules) float64 { return r.LowCTRThreshold },
		applies: func(r Rules, m domain.MetricBundle) bool {
			return m.Impressions > r.LowCTRMinImpressions && m.CTR < r.LowCTRThreshold
		},
		value: func(m domain.MetricBundle) float64 { return m.CTR },
		message: func(c domain.CampaignContext, value, threshold float64) string {
			return fmt.Sprintf("CTR da campanha %s está em %.2f%%, abaixo de %.2f%%", c.Name, value, threshold)
		},
		suggest: "Revise os criativos e a segmentação do público para aumentar a relevância dos anúncios",
	},
	{
		alertType: domain.AlertTypeHighCPC,
		severity:  domain.AlertSeverityWarning,
		metric:    "cpc",
		threshold: func(r Rules) float64 { return r.HighCPCCeiling },
		applies: func(r Rules, m domain.MetricBundle) bool {
			return m.Clicks > r.HighCPCMinClicks && m.CPC > r.HighCPCCeiling
		},
		value: func(m domain.MetricBundle) float64 { return m.CPC },
		message: func(c domain.CampaignContext, value, threshold float64) string {
			return fmt.Sprintf("CPC da campanha %s está em %.2f, acima do teto de %.2f", c.Name, value, threshold)
		},
		suggest: "Ajuste os lances ou amplie o público para reduzir o custo por clique",
	},
	{
		alertType: domain.AlertTypeLowROAS,
		severity:  domain.AlertSeverityError,
		metric:    "roas",
		threshold: func(r Rules) float64 { return r.LowROASThreshold },
		applies: func(r Rules, m domain.MetricBundle) bool {
			return m.Conversions > r.LowROASMinConversions && m.ROAS < r.LowROASThreshold
		},
		value: func(m domain.MetricBundle) float64 { return m.ROAS },
		message: func(c domain.CampaignContext, value, threshold float64) string {
			return fmt.Sprintf("ROAS da campanha %s está em %.2f, abaixo de %.2f", c.Name, value, threshold)
		},
		suggest: "Reavalie o orçamento e pause os conjuntos de anúncios com menor retorno",
	},
	{
		alertType: domain.AlertTypeLowConversionRate,
		severity:  domain.AlertSeverityWarning,
		metric:    "conversionRate",
		threshold: func(r Rules) float64 { return r.LowConversionRateThreshold },
		applies: func(r Rules, m domain.MetricBundle) bool {
			return m.Clicks > r.LowConversionRateMinClicks && m.ConversionRate < r.LowConversionRateThreshold
		},
		value: func(m domain.MetricBundle) float64 { return m.ConversionRate },
		message: func(c domain.CampaignContext, value, threshold float64) string {
			return fmt.Sprintf("Taxa de conversão da campanha %s está em %.2f%%, abaixo de %.2f%%", c.Name, value, threshold)
		},
		suggest: "Verifique a página de destino e o alinhamento entre anúncio e oferta",
	},
}

type Evaluator struct {
	rules Rules
	newID func() string
}

func NewEvaluator(rules Rules) *Evaluator {
	return &Evaluator{
		rules: rules,
		newID: utils.MustGenerateID,
	}
}

func (e *Evaluator) Rules() Rules {
	return e.rules
}

// Evaluate aplica todas as regras de forma independente. Sem I/O: prior são
// os alertas já registrados para a campanha, usados apenas para o cooldown.
func (e *Evaluator) Evaluate(c domain.CampaignContext, m domain.MetricBundle, prior []domain.AlertEvent, now time.Time) []domain.AlertEvent {
	m = performance.Recalculate(m)

	var alerts []domain.AlertEvent
	for _, r := range ruleSet {
		if !r.applies(e.rules, m) {
			continue
		}

		if e.inCooldown(c.CampaignID, r.alertType, prior, now) {
			continue
		}

		value := utils.Round(r.value(m), performance.DisplayPrecision)
		threshold := r.threshold(e.rules)

		alerts = append(alerts, domain.AlertEvent{
			ID:         e.newID(),
			CampaignID: c.CampaignID,
			Type:       r.alertType,
			Severity:   r.severity,
			Metric:     r.metric,
			Value:      value,
			Threshold:  threshold,
			Message:    r.message(c, value, threshold),
			Suggestion: r.suggest,
			CreatedAt:  now,
		})
	}

	return alerts
}

func (e *Evaluator) inCooldown(campaignID string, alertType domain.AlertType, prior []domain.AlertEvent, now time.Time) bool {
	if e.rules.Cooldown <= 0 {
		return false
	}

	for _, p := range prior {
		if p.CampaignID != campaignID || p.Type != alertType {
			continue
		}

		if now.Sub(p.CreatedAt) < e.rules.Cooldown {
			return true
		}
	}

	return false
}
