package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/live-performance-api/infrastructure/database/postgres"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	campaignsTable = "campaigns c"
)

var campaignColumns = []string{
	"c.id", "c.user_id", "c.name", "c.platform", "c.external_id", "c.status", "c.daily_budget",
	"c.metrics", "c.metrics_sync_seq", "c.last_synced_at", "c.last_sync_error", "c.last_sync_error_at",
	"c.created_at", "c.updated_at",
}

//go:generate mockgen -source=campaign.go -destination=mocks/campaign.go -package=mocks

type CampaignRepository interface {
	GetByID(ctx context.Context, campaignID string) (*domain.Campaign, error)
	ListByUser(ctx context.Context, userID int, statuses ...domain.CampaignStatus) ([]*domain.Campaign, error)
	ListActiveByUsers(ctx context.Context, userIDs []int) ([]*domain.Campaign, error)
	RecordSyncFailure(ctx context.Context, campaignID, message string, at time.Time) error
	UpdateCachedMetrics(ctx context.Context, q postgres.Queryer, campaignID string, metrics domain.MetricBundle, seq int64, syncedAt time.Time) (bool, error)
}

type campaignRepository struct {
	conn postgres.Conn
}

func NewCampaignRepository(conn postgres.Conn) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

func (r *campaignRepository) GetByID(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	query, args, err := squirrel.
		Select(campaignColumns...).
		From(campaignsTable).
		Where(squirrel.Eq{"c.id": campaignID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	campaign, err := scanCampaign(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear campanha: %w", err)
	}

	return campaign, nil
}

func (r *campaignRepository) ListByUser(ctx context.Context, userID int, statuses ...domain.CampaignStatus) ([]*domain.Campaign, error) {
	builder := squirrel.
		Select(campaignColumns...).
		From(campaignsTable).
		Where(squirrel.Eq{"c.user_id": userID}).
		OrderBy("c.created_at ASC", "c.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"c.status": statusStrings(statuses)})
	} else {
		builder = builder.Where(squirrel.NotEq{"c.status": string(domain.CampaignStatusDeleted)})
	}

	return r.list(ctx, builder)
}

// ListActiveByUsers retorna as campanhas ativas dos usuários informados
func (r *campaignRepository) ListActiveByUsers(ctx context.Context, userIDs []int) ([]*domain.Campaign, error) {
	if len(userIDs) == 0 {
		return []*domain.Campaign{}, nil
	}

	builder := squirrel.
		Select(campaignColumns...).
		From(campaignsTable).
		Where(squirrel.Eq{"c.user_id": userIDs, "c.status": string(domain.CampaignStatusActive)}).
		OrderBy("c.user_id ASC", "c.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, builder)
}

// RecordSyncFailure registra a falha sem tocar nas métricas em cache
func (r *campaignRepository) RecordSyncFailure(ctx context.Context, campaignID, message string, at time.Time) error {
	query, args, err := squirrel.
		Update("campaigns").
		Set("last_sync_error", message).
		Set("last_sync_error_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": campaignID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return wrapExecError(err)
	}

	return nil
}

// UpdateCachedMetrics só grava se seq for maior que a última sequência aplicada.
// Retorna false quando uma sincronização mais recente já foi gravada.
func (r *campaignRepository) UpdateCachedMetrics(ctx context.Context, q postgres.Queryer, campaignID string, metrics domain.MetricBundle, seq int64, syncedAt time.Time) (bool, error) {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return false, fmt.Errorf("erro ao serializar métricas para JSON: %w", err)
	}

	query, args, err := squirrel.
		Update("campaigns").
		Set("metrics", metricsJSON).
		Set("metrics_sync_seq", seq).
		Set("last_synced_at", syncedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": campaignID}).
		Where(squirrel.Lt{"metrics_sync_seq": seq}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	if q == nil {
		q = r.conn
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, wrapExecError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *campaignRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*domain.Campaign, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	campaigns := make([]*domain.Campaign, 0)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear campanhas: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return campaigns, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row scanner) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var (
		externalID   sql.NullString
		metricsJSON  []byte
		lastSyncedAt sql.NullTime
		lastError    sql.NullString
		lastErrorAt  sql.NullTime
		platform     string
		status       string
	)

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&platform,
		&externalID,
		&status,
		&c.DailyBudget,
		&metricsJSON,
		&c.MetricsSyncSeq,
		&lastSyncedAt,
		&lastError,
		&lastErrorAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Platform = domain.Platform(platform)
	c.Status = domain.CampaignStatus(status)

	if externalID.Valid {
		c.ExternalID = &externalID.String
	}
	if lastSyncedAt.Valid {
		c.LastSyncedAt = &lastSyncedAt.Time
	}
	if lastError.Valid {
		c.LastSyncError = &lastError.String
	}
	if lastErrorAt.Valid {
		c.LastSyncErrorAt = &lastErrorAt.Time
	}

	if len(metricsJSON) > 0 {
		var metrics domain.MetricBundle
		if err := json.Unmarshal(metricsJSON, &metrics); err != nil {
			return nil, fmt.Errorf("erro ao deserializar métricas: %w", err)
		}
		c.Metrics = &metrics
	}

	return c, nil
}

func statusStrings(statuses []domain.CampaignStatus) []string {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return values
}
