package alerting

import "time"

// Rules reúne os limites configuráveis de cada regra. As comparações são
// estritas tanto para a condição quanto para a amostra mínima.
type Rules struct {
	LowCTRThreshold            float64
	LowCTRMinImpressions       int64
	HighCPCCeiling             float64
	HighCPCMinClicks           int64
	LowROASThreshold           float64
	LowROASMinConversions      float64
	LowConversionRateThreshold float64
	LowConversionRateMinClicks int64
	Cooldown                   time.Duration
}

func DefaultRules() Rules {
	return Rules{
		LowCTRThreshold:            1.0,
		LowCTRMinImpressions:       1000,
		HighCPCCeiling:             5.0,
		HighCPCMinClicks:           10,
		LowROASThreshold:           2.0,
		LowROASMinConversions:      3,
		LowConversionRateThreshold: 1.0,
		LowConversionRateMinClicks: 50,
		Cooldown:                   time.Hour,
	}
}
