package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/performance"
)

var errStaleSync = errors.New("sincronização mais recente já aplicada")

// TxRunner é implementado por postgres.Connection
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}

// SyncWrite é tudo o que uma sincronização bem-sucedida grava
type SyncWrite struct {
	CampaignID string
	Seq        int64
	At         time.Time
	Metrics    domain.MetricBundle
	Alerts     []domain.AlertEvent
}

type SyncWriteResult struct {
	Applied   bool
	Snapshots []domain.SnapshotKey
	Alerts    int
}

//go:generate mockgen -source=sync_writer.go -destination=mocks/sync_writer.go -package=mocks

type SyncWriter interface {
	Apply(ctx context.Context, w SyncWrite) (*SyncWriteResult, error)
}

type syncWriter struct {
	tx        TxRunner
	campaigns CampaignRepository
	snapshots SnapshotRepository
	alerts    AlertRepository
}

func NewSyncWriter(tx TxRunner, campaigns CampaignRepository, snapshots SnapshotRepository, alerts AlertRepository) SyncWriter {
	return &syncWriter{
		tx:        tx,
		campaigns: campaigns,
		snapshots: snapshots,
		alerts:    alerts,
	}
}

// Apply grava cache da campanha, snapshots (hora, dia, semana, mês) e alertas
// numa única transação. Se uma sequência maior já foi aplicada, nada é gravado
// e Applied volta false.
func (w *syncWriter) Apply(ctx context.Context, sw SyncWrite) (*SyncWriteResult, error) {
	result := &SyncWriteResult{}

	err := w.tx.RunInTransaction(ctx, func(tx *sql.Tx) error {
		result.Snapshots = result.Snapshots[:0]

		// o UPDATE também bloqueia a linha da campanha até o fim da transação,
		// serializando as agregações da mesma campanha
		applied, err := w.campaigns.UpdateCachedMetrics(ctx, tx, sw.CampaignID, sw.Metrics, sw.Seq, sw.At)
		if err != nil {
			return fmt.Errorf("erro ao atualizar métricas da campanha: %w", err)
		}
		if !applied {
			return errStaleSync
		}

		for _, g := range []domain.Granularity{domain.GranularityHourly, domain.GranularityDaily} {
			key, err := w.upsert(ctx, tx, sw, g, sw.Metrics)
			if err != nil {
				return err
			}
			result.Snapshots = append(result.Snapshots, key)
		}

		for _, g := range []domain.Granularity{domain.GranularityWeekly, domain.GranularityMonthly} {
			raw, err := w.snapshots.SumDaily(ctx, tx, sw.CampaignID, g.PeriodStart(sw.At), g.PeriodEnd(sw.At))
			if err != nil {
				return err
			}

			key, err := w.upsert(ctx, tx, sw, g, performance.Calculate(raw))
			if err != nil {
				return err
			}
			result.Snapshots = append(result.Snapshots, key)
		}

		if err := w.alerts.Insert(ctx, tx, sw.Alerts); err != nil {
			return fmt.Errorf("erro ao gravar alertas: %w", err)
		}
		result.Alerts = len(sw.Alerts)

		return nil
	})
	if err != nil {
		if errors.Is(err, errStaleSync) {
			return &SyncWriteResult{Applied: false}, nil
		}
		return nil, err
	}

	result.Applied = true

	return result, nil
}

func (w *syncWriter) upsert(ctx context.Context, tx *sql.Tx, sw SyncWrite, g domain.Granularity, metrics domain.MetricBundle) (domain.SnapshotKey, error) {
	key := domain.NewSnapshotKey(sw.CampaignID, sw.At, g)

	_, err := w.snapshots.Upsert(ctx, tx, &domain.PerformanceSnapshot{
		SnapshotKey: key,
		Metrics:     metrics,
		SyncSeq:     sw.Seq,
	})
	if err != nil {
		return key, fmt.Errorf("erro ao gravar snapshot %s: %w", key, err)
	}

	return key, nil
}
