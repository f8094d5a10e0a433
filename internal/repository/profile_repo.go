package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"accounts-api/internal/apperr"
	"accounts-api/internal/domain"
)

// ProfileRepository define el contrato de persistencia para perfiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByAccountID(ctx context.Context, accountID string) (domain.Profile, error)
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (id, account_id, first_name, last_name, contact_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.AccountID,
		profile.FirstName,
		profile.LastName,
		profile.ContactPhone,
		profile.CreatedAt,
	)
	return apperr.FromStorage(err)
}

func (r *PgProfileRepository) GetByAccountID(ctx context.Context, accountID string) (domain.Profile, error) {
	const query = `
		SELECT id, account_id, first_name, last_name, contact_phone, created_at
		FROM profiles
		WHERE account_id = $1
	`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&p.ID,
		&p.AccountID,
		&p.FirstName,
		&p.LastName,
		&p.ContactPhone,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, apperr.NotFound(err)
	}
	if err != nil {
		return domain.Profile{}, apperr.FromStorage(err)
	}
	return p, nil
}
