package syncing

import (
	"context"
	"fmt"

	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

// CredentialResolver prefere as credenciais cadastradas pelo usuário e cai
// para as globais (variáveis de ambiente). Sem nenhuma, devolve nil e o
// adaptador falha com MissingCredentials.
type CredentialResolver struct {
	repo     repository.CredentialsRepository
	fallback map[domain.Platform]*domain.PlatformCredentials
}

func NewCredentialResolver(repo repository.CredentialsRepository, fallback map[domain.Platform]*domain.PlatformCredentials) *CredentialResolver {
	return &CredentialResolver{repo: repo, fallback: fallback}
}

func (r *CredentialResolver) Resolve(ctx context.Context, userID int, platform domain.Platform) (*domain.PlatformCredentials, error) {
	if r == nil {
		return nil, nil
	}

	if r.repo != nil {
		creds, err := r.repo.Get(ctx, userID, platform)
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar credenciais do usuário %d: %w", userID, err)
		}
		if !creds.IsEmpty() {
			return creds, nil
		}
	}

	creds := r.fallback[platform]
	if creds.IsEmpty() {
		return nil, nil
	}

	return creds, nil
}
