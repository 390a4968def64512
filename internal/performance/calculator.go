// Package performance calcula as métricas derivadas (KPIs) a partir dos contadores brutos
package performance

import (
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/pkg/utils"
)

const (
	// StoragePrecision é a escala usada em snapshots e no cache da campanha
	StoragePrecision int32 = 4
	// DisplayPrecision é a escala usada em mensagens e respostas formatadas
	DisplayPrecision int32 = 2
)

// Calculate recalcula todas as métricas derivadas. Divisões por zero resultam
// em exatamente 0 e a mesma entrada sempre produz o mesmo resultado.
func Calculate(raw domain.RawCounters) domain.MetricBundle {
	raw = sanitize(raw)

	impressions := float64(raw.Impressions)
	clicks := float64(raw.Clicks)

	return domain.MetricBundle{
		RawCounters: raw,
		DerivedMetrics: domain.DerivedMetrics{
			CTR:               ratio(clicks, impressions, 100),
			CPC:               ratio(raw.Spend, clicks, 1),
			ConversionRate:    ratio(raw.Conversions, clicks, 100),
			CostPerConversion: ratio(raw.Spend, raw.Conversions, 1),
			ROAS:              ratio(raw.Revenue, raw.Spend, 1),
		},
	}
}

// Recalculate descarta as derivadas recebidas e recalcula a partir dos brutos
func Recalculate(m domain.MetricBundle) domain.MetricBundle {
	return Calculate(m.RawCounters)
}

// Sum agrega vários conjuntos somando apenas os contadores brutos
func Sum(bundles ...domain.MetricBundle) domain.MetricBundle {
	var total domain.RawCounters
	for _, b := range bundles {
		total = total.Add(b.RawCounters)
	}

	return Calculate(total)
}

// ForDisplay arredonda as derivadas e valores monetários para exibição
func ForDisplay(m domain.MetricBundle) domain.MetricBundle {
	display := m
	display.Spend = utils.Round(m.Spend, DisplayPrecision)
	display.Revenue = utils.Round(m.Revenue, DisplayPrecision)
	display.Conversions = utils.Round(m.Conversions, DisplayPrecision)
	display.CTR = utils.Round(m.CTR, DisplayPrecision)
	display.CPC = utils.Round(m.CPC, DisplayPrecision)
	display.ConversionRate = utils.Round(m.ConversionRate, DisplayPrecision)
	display.CostPerConversion = utils.Round(m.CostPerConversion, DisplayPrecision)
	display.ROAS = utils.Round(m.ROAS, DisplayPrecision)
	return display
}

func ratio(numerator, denominator, scale float64) float64 {
	if denominator <= 0 {
		return 0
	}

	return utils.Round(numerator/denominator*scale, StoragePrecision)
}

func sanitize(raw domain.RawCounters) domain.RawCounters {
	if raw.Impressions < 0 {
		raw.Impressions = 0
	}
	if raw.Clicks < 0 {
		raw.Clicks = 0
	}
	raw.Conversions = nonNegative(raw.Conversions)
	raw.Spend = nonNegative(raw.Spend)
	raw.Revenue = nonNegative(raw.Revenue)
	return raw
}

func nonNegative(v float64) float64 {
	// NaN também falha na comparação e vira zero
	if !(v > 0) {
		return 0
	}
	return v
}
