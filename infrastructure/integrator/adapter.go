package integrator

import (
	"context"
	"sort"
	"sync"

	"github.com/vfg2006/live-performance-api/internal/domain"
)

//go:generate mockgen -source=adapter.go -destination=mocks/adapter.go -package=mocks

// Adapter transforma a referência de uma campanha em contadores brutos da plataforma.
// Nunca retorna métricas derivadas e não altera estado compartilhado.
type Adapter interface {
	Platform() domain.Platform
	Fetch(ctx context.Context, ref domain.CampaignRef, creds *domain.PlatformCredentials) (*domain.MetricBundle, error)
	HealthCheck(ctx context.Context, creds *domain.PlatformCredentials) error
}

type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.Platform]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Platform]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adiciona ou substitui o adaptador da plataforma
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[a.Platform()] = a
}

func (r *Registry) Get(platform domain.Platform) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[platform]
	if !ok {
		return nil, NewAdapterError(ErrUnsupportedPlatform, platform, nil)
	}

	return a, nil
}

// Platforms retorna as plataformas registradas em ordem alfabética
func (r *Registry) Platforms() []domain.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]domain.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, p)
	}

	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

	return platforms
}
