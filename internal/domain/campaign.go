// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import (
	"time"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusDeleted   CampaignStatus = "deleted"
)

type Campaign struct {
	ID              string         `json:"id"`
	UserID          int            `json:"userId"`
	Name            string         `json:"name"`
	Platform        Platform       `json:"platform"`
	ExternalID      *string        `json:"externalId"`
	Status          CampaignStatus `json:"status"`
	DailyBudget     float64        `json:"dailyBudget"`
	Metrics         *MetricBundle  `json:"metrics"`
	MetricsSyncSeq  int64          `json:"-"`
	LastSyncedAt    *time.Time     `json:"lastSyncedAt"`
	LastSyncError   *string        `json:"lastSyncError"`
	LastSyncErrorAt *time.Time     `json:"lastSyncErrorAt"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// IsSyncEligible indica se a campanha participa da sincronização ao vivo
func (c *Campaign) IsSyncEligible() bool {
	return c != nil && c.Status == CampaignStatusActive
}

// IsStale indica que a última tentativa de sincronização falhou depois do
// último sucesso, ou seja, as métricas em cache estão desatualizadas
func (c *Campaign) IsStale() bool {
	if c == nil || c.LastSyncErrorAt == nil {
		return false
	}

	if c.LastSyncedAt == nil {
		return true
	}

	return c.LastSyncErrorAt.After(*c.LastSyncedAt)
}

// Ref monta a referência usada pelos adaptadores de plataforma
func (c *Campaign) Ref(date time.Time) CampaignRef {
	ref := CampaignRef{
		CampaignID: c.ID,
		Date:       date,
	}

	if c.ExternalID != nil {
		ref.ExternalID = *c.ExternalID
	}

	return ref
}

// CampaignRef identifica a campanha (ou a conta, quando ExternalID é vazio)
// que deve ser consultada na plataforma
type CampaignRef struct {
	CampaignID string
	ExternalID string
	Date       time.Time
}

// IsAccountLevel indica consulta de totais da conta, sem campanha específica
func (r CampaignRef) IsAccountLevel() bool {
	return r.ExternalID == ""
}

// CampaignLiveView é a campanha como exibida no dashboard ao vivo
type CampaignLiveView struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Platform     Platform      `json:"platform"`
	Status       string        `json:"status"`
	DailyBudget  float64       `json:"dailyBudget"`
	Metrics      *MetricBundle `json:"metrics"`
	LastSyncedAt *time.Time    `json:"lastSyncedAt"`
	Stale        bool          `json:"stale"`
	SyncError    *string       `json:"syncError,omitempty"`
}
