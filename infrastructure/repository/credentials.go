package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/live-performance-api/infrastructure/database/postgres"
	"github.com/vfg2006/live-performance-api/internal/domain"
)

//go:generate mockgen -source=credentials.go -destination=mocks/credentials.go -package=mocks

type CredentialsRepository interface {
	Get(ctx context.Context, userID int, platform domain.Platform) (*domain.PlatformCredentials, error)
	Save(ctx context.Context, userID int, creds *domain.PlatformCredentials) error
}

// Sealer protege as credenciais em repouso (pkg/secrets.Box)
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

type credentialsRepository struct {
	conn   postgres.Conn
	sealer Sealer
}

func NewCredentialsRepository(conn postgres.Conn, sealer Sealer) CredentialsRepository {
	return &credentialsRepository{
		conn:   conn,
		sealer: sealer,
	}
}

// Get retorna nil quando o usuário não cadastrou credenciais para a plataforma
func (r *credentialsRepository) Get(ctx context.Context, userID int, platform domain.Platform) (*domain.PlatformCredentials, error) {
	query, args, err := squirrel.
		Select("upc.sealed").
		From("user_platform_credentials upc").
		Where(squirrel.Eq{"upc.user_id": userID, "upc.platform": string(platform)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var sealed []byte
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&sealed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar credenciais: %w", err)
	}

	plaintext, err := r.sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir credenciais do usuário %d (%s): %w", userID, platform, err)
	}

	var creds domain.PlatformCredentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("erro ao deserializar credenciais: %w", err)
	}
	creds.Platform = platform

	return &creds, nil
}

func (r *credentialsRepository) Save(ctx context.Context, userID int, creds *domain.PlatformCredentials) error {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("erro ao serializar credenciais: %w", err)
	}

	sealed, err := r.sealer.Seal(plaintext)
	if err != nil {
		return fmt.Errorf("erro ao selar credenciais: %w", err)
	}

	query, args, err := squirrel.StatementBuilder.
		Insert("user_platform_credentials").
		Columns("user_id", "platform", "sealed").
		Values(userID, string(creds.Platform), sealed).
		Suffix(`
			ON CONFLICT (user_id, platform) DO UPDATE SET
				sealed = EXCLUDED.sealed,
				updated_at = NOW()
		`).
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
