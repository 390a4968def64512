package domain

// RawCounters são os contadores brutos entregues pelos adaptadores de plataforma.
// Nunca negativos; zero quando a plataforma não reporta o valor no período.
type RawCounters struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}

// DerivedMetrics são sempre recalculadas a partir dos contadores brutos
type DerivedMetrics struct {
	CTR               float64 `json:"ctr"`
	CPC               float64 `json:"cpc"`
	ConversionRate    float64 `json:"conversionRate"`
	CostPerConversion float64 `json:"costPerConversion"`
	ROAS              float64 `json:"roas"`
}

type MetricBundle struct {
	RawCounters
	DerivedMetrics
}

// IsEmpty indica ausência total de atividade no período
func (m *MetricBundle) IsEmpty() bool {
	if m == nil {
		return true
	}

	return m.Impressions == 0 && m.Clicks == 0 && m.Conversions == 0 && m.Spend == 0 && m.Revenue == 0
}

// Add soma os contadores brutos de outro conjunto
func (r RawCounters) Add(other RawCounters) RawCounters {
	return RawCounters{
		Impressions: r.Impressions + other.Impressions,
		Clicks:      r.Clicks + other.Clicks,
		Conversions: r.Conversions + other.Conversions,
		Spend:       r.Spend + other.Spend,
		Revenue:     r.Revenue + other.Revenue,
	}
}

// PlatformTotals agrega as métricas em cache de uma plataforma
type PlatformTotals struct {
	Platform  Platform     `json:"platform"`
	Campaigns int          `json:"campaigns"`
	Metrics   MetricBundle `json:"metrics"`
}
