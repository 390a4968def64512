package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/live-performance-api/infrastructure/database/postgres"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

const (
	snapshotsTable = "performance_snapshots ps"
)

var snapshotColumns = []string{
	"ps.id", "ps.campaign_id", "ps.snapshot_date", "ps.hour", "ps.granularity",
	"ps.impressions", "ps.clicks", "ps.conversions", "ps.spend", "ps.revenue",
	"ps.ctr", "ps.cpc", "ps.conversion_rate", "ps.cost_per_conversion", "ps.roas",
	"ps.sync_seq", "ps.created_at", "ps.updated_at",
}

//go:generate mockgen -source=snapshot.go -destination=mocks/snapshot.go -package=mocks

type SnapshotRepository interface {
	Upsert(ctx context.Context, q postgres.Queryer, snapshot *domain.PerformanceSnapshot) (bool, error)
	ListByRange(ctx context.Context, campaignID string, from, to time.Time, granularity domain.Granularity) ([]*domain.PerformanceSnapshot, error)
	ListHourlyByCampaigns(ctx context.Context, campaignIDs []string, date time.Time) ([]*domain.PerformanceSnapshot, error)
	SumDaily(ctx context.Context, q postgres.Queryer, campaignID string, from, to time.Time) (domain.RawCounters, error)
}

type snapshotRepository struct {
	conn postgres.Conn
}

func NewSnapshotRepository(conn postgres.Conn) SnapshotRepository {
	return &snapshotRepository{
		conn: conn,
	}
}

// Upsert grava um único registro por (campanha, data, hora, granularidade).
// Uma sequência menor que a já gravada não sobrescreve o registro.
func (r *snapshotRepository) Upsert(ctx context.Context, q postgres.Queryer, s *domain.PerformanceSnapshot) (bool, error) {
	if !s.Granularity.IsValid() {
		return false, fmt.Errorf("granularidade inválida: %s", s.Granularity)
	}

	var hour any
	if s.Hour != nil {
		hour = *s.Hour
	}

	m := s.Metrics
	query, args, err := squirrel.StatementBuilder.
		Insert("performance_snapshots").
		Columns(
			"campaign_id", "snapshot_date", "hour", "granularity",
			"impressions", "clicks", "conversions", "spend", "revenue",
			"ctr", "cpc", "conversion_rate", "cost_per_conversion", "roas",
			"sync_seq",
		).
		Values(
			s.CampaignID, s.Date.Format(time.DateOnly), hour, string(s.Granularity),
			m.Impressions, m.Clicks, m.Conversions, m.Spend, m.Revenue,
			storableRatio(m.CTR), storableRatio(m.CPC), storableRatio(m.ConversionRate),
			storableRatio(m.CostPerConversion), storableRatio(m.ROAS),
			s.SyncSeq,
		).
		Suffix(`
			ON CONFLICT (campaign_id, snapshot_date, (COALESCE(hour, -1)), granularity) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				conversions = EXCLUDED.conversions,
				spend = EXCLUDED.spend,
				revenue = EXCLUDED.revenue,
				ctr = EXCLUDED.ctr,
				cpc = EXCLUDED.cpc,
				conversion_rate = EXCLUDED.conversion_rate,
				cost_per_conversion = EXCLUDED.cost_per_conversion,
				roas = EXCLUDED.roas,
				sync_seq = EXCLUDED.sync_seq,
				updated_at = NOW()
			WHERE performance_snapshots.sync_seq <= EXCLUDED.sync_seq
		`).
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

// ListByRange retorna os snapshots da granularidade entre from e to (inclusivo),
// ordenados por data e hora
func (r *snapshotRepository) ListByRange(ctx context.Context, campaignID string, from, to time.Time, granularity domain.Granularity) ([]*domain.PerformanceSnapshot, error) {
	builder := squirrel.
		Select(snapshotColumns...).
		From(snapshotsTable).
		Where(squirrel.Eq{"ps.campaign_id": campaignID, "ps.granularity": string(granularity)}).
		Where(squirrel.GtOrEq{"ps.snapshot_date": from.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"ps.snapshot_date": to.Format(time.DateOnly)}).
		OrderBy("ps.snapshot_date ASC", "ps.hour ASC NULLS FIRST").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, builder)
}

func (r *snapshotRepository) ListHourlyByCampaigns(ctx context.Context, campaignIDs []string, date time.Time) ([]*domain.PerformanceSnapshot, error) {
	if len(campaignIDs) == 0 {
		return []*domain.PerformanceSnapshot{}, nil
	}

	builder := squirrel.
		Select(snapshotColumns...).
		From(snapshotsTable).
		Where(squirrel.Eq{
			"ps.campaign_id":   campaignIDs,
			"ps.granularity":   string(domain.GranularityHourly),
			"ps.snapshot_date": date.Format(time.DateOnly),
		}).
		OrderBy("ps.hour ASC", "ps.campaign_id ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, builder)
}

// SumDaily soma os contadores brutos dos snapshots diários do intervalo.
// Base das agregações semanal e mensal.
func (r *snapshotRepository) SumDaily(ctx context.Context, q postgres.Queryer, campaignID string, from, to time.Time) (domain.RawCounters, error) {
	query, args, err := squirrel.
		Select(
			"COALESCE(SUM(ps.impressions), 0)",
			"COALESCE(SUM(ps.clicks), 0)",
			"COALESCE(SUM(ps.conversions), 0)",
			"COALESCE(SUM(ps.spend), 0)",
			"COALESCE(SUM(ps.revenue), 0)",
		).
		From(snapshotsTable).
		Where(squirrel.Eq{"ps.campaign_id": campaignID, "ps.granularity": string(domain.GranularityDaily)}).
		Where(squirrel.GtOrEq{"ps.snapshot_date": from.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"ps.snapshot_date": to.Format(time.DateOnly)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return domain.RawCounters{}, fmt.Errorf("erro ao construir a query: %w", err)
	}

	if q == nil {
		q = r.conn
	}

	var raw domain.RawCounters
	err = q.QueryRowContext(ctx, query, args...).Scan(
		&raw.Impressions,
		&raw.Clicks,
		&raw.Conversions,
		&raw.Spend,
		&raw.Revenue,
	)
	if err != nil {
		return domain.RawCounters{}, fmt.Errorf("erro ao somar snapshots diários: %w", err)
	}

	return raw, nil
}

func (r *snapshotRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*domain.PerformanceSnapshot, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.PerformanceSnapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear snapshots: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return snapshots, nil
}

func scanSnapshot(row scanner) (*domain.PerformanceSnapshot, error) {
	s := &domain.PerformanceSnapshot{}
	var (
		hour        sql.NullInt32
		granularity string
	)

	err := row.Scan(
		&s.ID,
		&s.CampaignID,
		&s.Date,
		&hour,
		&granularity,
		&s.Metrics.Impressions,
		&s.Metrics.Clicks,
		&s.Metrics.Conversions,
		&s.Metrics.Spend,
		&s.Metrics.Revenue,
		&s.Metrics.CTR,
		&s.Metrics.CPC,
		&s.Metrics.ConversionRate,
		&s.Metrics.CostPerConversion,
		&s.Metrics.ROAS,
		&s.SyncSeq,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Granularity = domain.Granularity(granularity)
	if hour.Valid {
		h := int(hour.Int32)
		s.Hour = &h
	}

	return s, nil
}
