package domain

import (
	"fmt"
	"time"
)

type Granularity string

const (
	GranularityHourly  Granularity = "hourly"
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

func (g Granularity) IsValid() bool {
	switch g {
	case GranularityHourly, GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// PeriodStart retorna a data que identifica o período da granularidade:
// o próprio dia para hourly/daily, a segunda-feira para weekly e o dia 1 para monthly
func (g Granularity) PeriodStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	switch g {
	case GranularityWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// PeriodEnd retorna o último dia (inclusivo) do período
func (g Granularity) PeriodEnd(t time.Time) time.Time {
	start := g.PeriodStart(t)

	switch g {
	case GranularityWeekly:
		return start.AddDate(0, 0, 6)
	case GranularityMonthly:
		return start.AddDate(0, 1, -1)
	default:
		return start
	}
}

// SnapshotKey identifica unicamente um snapshot. Hour só é preenchido na
// granularidade hourly.
type SnapshotKey struct {
	CampaignID  string      `json:"campaignId"`
	Date        time.Time   `json:"date"`
	Hour        *int        `json:"hour"`
	Granularity Granularity `json:"granularity"`
}

// NewSnapshotKey normaliza a data para o início do período e descarta a hora
// quando a granularidade não é hourly
func NewSnapshotKey(campaignID string, at time.Time, granularity Granularity) SnapshotKey {
	key := SnapshotKey{
		CampaignID:  campaignID,
		Date:        granularity.PeriodStart(at),
		Granularity: granularity,
	}

	if granularity == GranularityHourly {
		hour := at.Hour()
		key.Hour = &hour
	}

	return key
}

func (k SnapshotKey) String() string {
	hour := "-"
	if k.Hour != nil {
		hour = fmt.Sprintf("%02d", *k.Hour)
	}
	return fmt.Sprintf("%s:%s:%s:%s", k.CampaignID, k.Date.Format(time.DateOnly), hour, k.Granularity)
}

type PerformanceSnapshot struct {
	ID int64 `json:"id"`
	SnapshotKey
	Metrics   MetricBundle `json:"metrics"`
	SyncSeq   int64        `json:"-"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// HourlyTrendPoint é um ponto da série horária exibida no dashboard
type HourlyTrendPoint struct {
	Date    string       `json:"date"`
	Hour    int          `json:"hour"`
	Metrics MetricBundle `json:"metrics"`
}
