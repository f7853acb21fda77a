package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkarpushin/skladd/internal/domain/categories"
	"github.com/mkarpushin/skladd/internal/domain/ledger"
	"github.com/mkarpushin/skladd/internal/domain/materials"
	"github.com/mkarpushin/skladd/internal/infra/db"
)

// PG — боевая реализация DB поверх pgx-пула.
type PG struct{ pool *pgxpool.Pool }

func NewPG(pool *pgxpool.Pool) *PG { return &PG{pool: pool} }

func pgStores(q db.Querier) Stores {
	return Stores{
		Categories: categories.NewRepo(q),
		Materials:  materials.NewRepo(q),
		Ledger:     ledger.NewRepo(q),
	}
}

func (p *PG) Stores() Stores { return pgStores(p.pool) }

func (p *PG) WithTx(ctx context.Context, fn func(s Stores) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(pgStores(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
