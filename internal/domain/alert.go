package domain

import "time"

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityError    AlertSeverity = "error"
	AlertSeverityCritical AlertSeverity = "critical"
)

type AlertType string

const (
	AlertTypeLowCTR            AlertType = "low_ctr"
	AlertTypeHighCPC           AlertType = "high_cpc"
	AlertTypeLowROAS           AlertType = "low_roas"
	AlertTypeLowConversionRate AlertType = "low_conversion_rate"
)

// AlertEvent é gerado pelo avaliador de alertas e pertence à campanha.
// Apenas Acknowledged muda depois de criado, e fora deste serviço.
type AlertEvent struct {
	ID           string        `json:"id"`
	CampaignID   string        `json:"campaignId"`
	Type         AlertType     `json:"type"`
	Severity     AlertSeverity `json:"severity"`
	Metric       string        `json:"metric"`
	Value        float64       `json:"value"`
	Threshold    float64       `json:"threshold"`
	Message      string        `json:"message"`
	Suggestion   string        `json:"suggestion"`
	Acknowledged bool          `json:"acknowledged"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// CampaignContext é o recorte da campanha que o avaliador precisa conhecer
type CampaignContext struct {
	CampaignID  string
	Name        string
	Platform    Platform
	DailyBudget float64
}
