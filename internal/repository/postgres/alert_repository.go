package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

type alertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) repository.AlertRepository {
	return &alertRepository{pool: pool}
}

var _ repository.AlertRepository = (*alertRepository)(nil)

func (r *alertRepository) List(ctx context.Context) ([]*model.Alert, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT a.id, a.title, a.description, a.type, a.user_id, a.created_at,
		        u.id, u.email, u.name, u.role, u.status
		   FROM alerts a
		   JOIN users u ON u.id = a.user_id
		  ORDER BY a.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]*model.Alert, 0, 16)
	for rows.Next() {
		alert := &model.Alert{}
		user := &model.User{}
		if err := rows.Scan(
			&alert.ID,
			&alert.Title,
			&alert.Description,
			&alert.Type,
			&alert.UserID,
			&alert.CreatedAt,
			&user.ID,
			&user.Email,
			&user.Name,
			&user.Role,
			&user.Status,
		); err != nil {
			return nil, err
		}
		alert.User = user
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO alerts (id, title, description, type, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		alert.ID,
		alert.Title,
		alert.Description,
		alert.Type,
		alert.UserID,
		alert.CreatedAt,
	)
	return translateError(err)
}

func (r *alertRepository) Update(ctx context.Context, alert *model.Alert) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE alerts SET title = $2, description = $3, type = $4 WHERE id = $1`,
		alert.ID,
		alert.Title,
		alert.Description,
		alert.Type,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *alertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}
