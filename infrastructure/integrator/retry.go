package integrator

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

type RetryPolicy struct {
	// Attempts é o número máximo de chamadas ao adaptador, incluindo a primeira
	Attempts  int
	BaseDelay time.Duration
	// Timeout limita cada chamada individualmente
	Timeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		Timeout:   60 * time.Second,
	}
}

// FetchWithRetry chama o adaptador repetindo apenas falhas transitórias, com
// backoff exponencial. Credenciais vazias falham sem nenhuma chamada.
func FetchWithRetry(ctx context.Context, adapter Adapter, ref domain.CampaignRef, creds *domain.PlatformCredentials, policy RetryPolicy) (*domain.MetricBundle, error) {
	if creds.IsEmpty() {
		return nil, NewAdapterError(ErrMissingCredentials, adapter.Platform(), nil).WithCampaign(ref.CampaignID)
	}

	attempts := max(policy.Attempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		metrics, err := fetchOnce(ctx, adapter, ref, creds, policy.Timeout)
		if err == nil {
			return metrics, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == attempts-1 || ctx.Err() != nil {
			break
		}

		wait := policy.BaseDelay * (1 << uint(attempt))
		logrus.WithFields(logrus.Fields{
			"platform":    adapter.Platform(),
			"campaign_id": ref.CampaignID,
			"attempt":     attempt + 1,
			"backoff_ms":  wait.Milliseconds(),
			"error":       err.Error(),
		}).Warn("integrator: falha transitória, tentando novamente")

		if err := sleepCtx(ctx, wait); err != nil {
			break
		}
	}

	return nil, lastErr
}

func fetchOnce(ctx context.Context, adapter Adapter, ref domain.CampaignRef, creds *domain.PlatformCredentials, timeout time.Duration) (*domain.MetricBundle, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	metrics, err := adapter.Fetch(callCtx, ref, creds)
	if err == nil {
		return metrics, nil
	}

	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return nil, adapterErr.WithCampaign(ref.CampaignID)
	}

	// erro não classificado (timeout, rede) é tratado como transitório
	return nil, NewAdapterError(ErrTransient, adapter.Platform(), err).WithCampaign(ref.CampaignID)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
