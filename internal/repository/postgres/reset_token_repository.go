package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

type resetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(pool *pgxpool.Pool) repository.ResetTokenRepository {
	return &resetTokenRepository{pool: pool}
}

var _ repository.ResetTokenRepository = (*resetTokenRepository)(nil)

func (r *resetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO password_reset_tokens (token, user_id, expires_at, used, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.Token,
		token.UserID,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)
	return translateError(err)
}

func (r *resetTokenRepository) FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT token, user_id, expires_at, used, created_at
		   FROM password_reset_tokens
		  WHERE token = $1`,
		token,
	)

	out := &model.PasswordResetToken{}
	err := row.Scan(&out.Token, &out.UserID, &out.ExpiresAt, &out.Used, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE token = $1 AND used = FALSE`,
		token,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *resetTokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM password_reset_tokens WHERE used = TRUE OR expires_at < $1`,
		before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
