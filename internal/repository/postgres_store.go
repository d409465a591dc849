package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the governance repositories with Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
	txMu sync.Mutex
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Staff() StaffRepository {
	return NewStaffRepository(s.pool)
}

func (s *PostgresStore) Requests() ChangeRequestRepository {
	return NewChangeRequestRepository(s.pool)
}

func (s *PostgresStore) Catalog() TagCatalogRepository {
	return NewTagCatalogRepository(s.pool)
}

// RunInTx runs fn inside a single database transaction. Writers within this
// process are serialized as well.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &postgresTxStore{tx: tx})
	})
}

type postgresTxStore struct {
	tx pgx.Tx
}

func (t *postgresTxStore) Staff() StaffRepository {
	return NewStaffRepository(t.tx)
}

func (t *postgresTxStore) Requests() ChangeRequestRepository {
	return NewChangeRequestRepository(t.tx)
}

func (t *postgresTxStore) Catalog() TagCatalogRepository {
	return NewTagCatalogRepository(t.tx)
}

func (t *postgresTxStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}
