package domain

import "time"

type Platform string

const (
	PlatformGoogleAds Platform = "google_ads"
	PlatformMeta      Platform = "meta"
)

func (p Platform) String() string {
	return string(p)
}

type ConnectionState string

const (
	ConnectionStateConnected     ConnectionState = "connected"
	ConnectionStateError         ConnectionState = "error"
	ConnectionStateNotConfigured ConnectionState = "not_configured"
)

// PlatformConnectionStatus é efêmero: reconstruído a cada verificação de
// status ou ciclo de sincronização, nunca persistido
type PlatformConnectionStatus struct {
	Platform           Platform        `json:"platform"`
	Status             ConnectionState `json:"status"`
	LastError          *string         `json:"lastError"`
	LastSuccessfulSync *time.Time      `json:"lastSuccessfulSync"`
	CheckedAt          time.Time       `json:"checkedAt"`
}

// PlatformCredentials reúne os segredos necessários para consultar uma plataforma.
// Cada adaptador valida os campos que usa.
type PlatformCredentials struct {
	Platform        Platform `json:"platform"`
	AccessToken     string   `json:"access_token,omitempty"`
	AccountID       string   `json:"account_id,omitempty"`
	ClientID        string   `json:"client_id,omitempty"`
	ClientSecret    string   `json:"client_secret,omitempty"`
	DeveloperToken  string   `json:"developer_token,omitempty"`
	RefreshToken    string   `json:"refresh_token,omitempty"`
	LoginCustomerID string   `json:"login_customer_id,omitempty"`
}

func (c *PlatformCredentials) IsEmpty() bool {
	if c == nil {
		return true
	}

	return c.AccessToken == "" && c.AccountID == "" && c.ClientID == "" &&
		c.ClientSecret == "" && c.DeveloperToken == "" && c.RefreshToken == ""
}

// ServiceStatus descreve o estado do agendador de sincronização ao vivo
type ServiceStatus struct {
	Running         bool         `json:"running"`
	IntervalSeconds int64        `json:"intervalSeconds"`
	LastSyncTime    *time.Time   `json:"lastSyncTime"`
	ActiveUsers     int          `json:"activeUsers"`
	LastPass        *PassSummary `json:"lastPass,omitempty"`
}

// PassSummary resume um ciclo completo do agendador
type PassSummary struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Campaigns  int       `json:"campaigns"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}
