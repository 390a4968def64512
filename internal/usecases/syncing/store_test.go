package syncing

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/vfg2006/live-performance-api/infrastructure/database/postgres"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

// memStore implementa os repositórios em memória. RunInTransaction restaura
// o estado anterior quando fn falha, como um ROLLBACK.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	campaigns map[string]domain.Campaign
	snapshots map[string]domain.PerformanceSnapshot
	alerts    []domain.AlertEvent
	creds     map[int]map[domain.Platform]*domain.PlatformCredentials
}

func newMemStore(campaigns ...domain.Campaign) *memStore {
	s := &memStore{
		campaigns: make(map[string]domain.Campaign),
		snapshots: make(map[string]domain.PerformanceSnapshot),
		creds:     make(map[int]map[domain.Platform]*domain.PlatformCredentials),
	}
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return s
}

func (s *memStore) RunInTransaction(_ context.Context, fn func(*sql.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	campaigns := make(map[string]domain.Campaign, len(s.campaigns))
	for k, v := range s.campaigns {
		campaigns[k] = v
	}
	snapshots := make(map[string]domain.PerformanceSnapshot, len(s.snapshots))
	for k, v := range s.snapshots {
		snapshots[k] = v
	}
	alerts := append([]domain.AlertEvent(nil), s.alerts...)
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.campaigns, s.snapshots, s.alerts = campaigns, snapshots, alerts
		s.mu.Unlock()
		return err
	}

	return nil
}

func (s *memStore) campaign(id string) domain.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaigns[id]
}

func (s *memStore) snapshot(key domain.SnapshotKey) (domain.PerformanceSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[key.String()]
	return snap, ok
}

func (s *memStore) snapshotCount(campaignID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, snap := range s.snapshots {
		if snap.CampaignID == campaignID {
			n++
		}
	}
	return n
}

func (s *memStore) alertCount(campaignID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, a := range s.alerts {
		if a.CampaignID == campaignID {
			n++
		}
	}
	return n
}

func (s *memStore) setCredentials(userID int, creds *domain.PlatformCredentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds[userID] == nil {
		s.creds[userID] = make(map[domain.Platform]*domain.PlatformCredentials)
	}
	s.creds[userID][creds.Platform] = creds
}

// CampaignRepository

func (s *memStore) GetByID(_ context.Context, campaignID string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memStore) ListByUser(_ context.Context, userID int, _ ...domain.CampaignStatus) ([]*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Campaign
	for _, c := range s.campaigns {
		c := c
		if c.UserID == userID {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) ListActiveByUsers(_ context.Context, userIDs []int) ([]*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Campaign
	for _, c := range s.campaigns {
		c := c
		for _, id := range userIDs {
			if c.UserID == id && c.Status == domain.CampaignStatusActive {
				out = append(out, &c)
			}
		}
	}
	return out, nil
}

func (s *memStore) RecordSyncFailure(_ context.Context, campaignID, message string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.campaigns[campaignID]
	c.LastSyncError = &message
	c.LastSyncErrorAt = &at
	s.campaigns[campaignID] = c
	return nil
}

func (s *memStore) UpdateCachedMetrics(_ context.Context, _ postgres.Queryer, campaignID string, metrics domain.MetricBundle, seq int64, syncedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.campaigns[campaignID]
	if c.MetricsSyncSeq >= seq {
		return false, nil
	}
	c.Metrics = &metrics
	c.MetricsSyncSeq = seq
	c.LastSyncedAt = &syncedAt
	s.campaigns[campaignID] = c
	return true, nil
}

// SnapshotRepository

func (s *memStore) Upsert(_ context.Context, _ postgres.Queryer, snap *domain.PerformanceSnapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := snap.SnapshotKey.String()
	if existing, ok := s.snapshots[key]; ok && existing.SyncSeq > snap.SyncSeq {
		return false, nil
	}
	s.snapshots[key] = *snap
	return true, nil
}

func (s *memStore) ListByRange(_ context.Context, campaignID string, from, to time.Time, g domain.Granularity) ([]*domain.PerformanceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.PerformanceSnapshot
	for _, snap := range s.snapshots {
		snap := snap
		if snap.CampaignID == campaignID && snap.Granularity == g && !snap.Date.Before(from) && !snap.Date.After(to) {
			out = append(out, &snap)
		}
	}
	return out, nil
}

func (s *memStore) ListHourlyByCampaigns(_ context.Context, _ []string, _ time.Time) ([]*domain.PerformanceSnapshot, error) {
	return nil, nil
}

func (s *memStore) SumDaily(_ context.Context, _ postgres.Queryer, campaignID string, from, to time.Time) (domain.RawCounters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum domain.RawCounters
	for _, snap := range s.snapshots {
		if snap.CampaignID == campaignID && snap.Granularity == domain.GranularityDaily &&
			!snap.Date.Before(from) && !snap.Date.After(to) {
			sum = sum.Add(snap.Metrics.RawCounters)
		}
	}
	return sum, nil
}

// AlertRepository

func (s *memStore) Insert(_ context.Context, _ postgres.Queryer, alerts []domain.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alerts...)
	return nil
}

func (s *memStore) ListSince(_ context.Context, campaignID string, since time.Time) ([]domain.AlertEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AlertEvent
	for _, a := range s.alerts {
		if a.CampaignID == campaignID && !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

// CredentialsRepository

func (s *memStore) Get(_ context.Context, userID int, platform domain.Platform) (*domain.PlatformCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds[userID][platform], nil
}

func (s *memStore) Save(_ context.Context, userID int, creds *domain.PlatformCredentials) error {
	s.setCredentials(userID, creds)
	return nil
}
