package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/live-performance-api/infrastructure/database/postgres"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

const (
	alertsTable = "campaign_alerts ca"
)

//go:generate mockgen -source=alert.go -destination=mocks/alert.go -package=mocks

type AlertRepository interface {
	Insert(ctx context.Context, q postgres.Queryer, alerts []domain.AlertEvent) error
	ListSince(ctx context.Context, campaignID string, since time.Time) ([]domain.AlertEvent, error)
}

type alertRepository struct {
	conn postgres.Conn
}

func NewAlertRepository(conn postgres.Conn) AlertRepository {
	return &alertRepository{
		conn: conn,
	}
}

// Insert anexa os alertas à campanha. Alertas nunca são atualizados aqui.
func (r *alertRepository) Insert(ctx context.Context, q postgres.Queryer, alerts []domain.AlertEvent) error {
	if len(alerts) == 0 {
		return nil
	}

	builder := squirrel.StatementBuilder.
		Insert("campaign_alerts").
		Columns("id", "campaign_id", "type", "severity", "metric", "value", "threshold", "message", "suggestion", "acknowledged", "created_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, a := range alerts {
		builder = builder.Values(
			a.ID,
			a.CampaignID,
			string(a.Type),
			string(a.Severity),
			a.Metric,
			storableRatio(a.Value),
			storableRatio(a.Threshold),
			a.Message,
			a.Suggestion,
			a.Acknowledged,
			a.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if q == nil {
		q = r.conn
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (r *alertRepository) ListSince(ctx context.Context, campaignID string, since time.Time) ([]domain.AlertEvent, error) {
	query, args, err := squirrel.
		Select("ca.id, ca.campaign_id, ca.type, ca.severity, ca.metric, ca.value, ca.threshold, ca.message, ca.suggestion, ca.acknowledged, ca.created_at").
		From(alertsTable).
		Where(squirrel.Eq{"ca.campaign_id": campaignID}).
		Where(squirrel.GtOrEq{"ca.created_at": since}).
		OrderBy("ca.created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	alerts := make([]domain.AlertEvent, 0)
	for rows.Next() {
		var (
			a         domain.AlertEvent
			alertType string
			severity  string
		)

		if err := rows.Scan(
			&a.ID,
			&a.CampaignID,
			&alertType,
			&severity,
			&a.Metric,
			&a.Value,
			&a.Threshold,
			&a.Message,
			&a.Suggestion,
			&a.Acknowledged,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear alertas: %w", err)
		}

		a.Type = domain.AlertType(alertType)
		a.Severity = domain.AlertSeverity(severity)
		alerts = append(alerts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return alerts, nil
}
