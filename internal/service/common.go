package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner abstracts *pgxpool.Pool for services that open their own
// transactions; the pool is constructed in main and injected, never held
// as a package global.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
