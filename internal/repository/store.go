package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leaguedesk/roster-service/internal/domain"
)

// Error Contract:
// - ErrNotFound when the requested entity does not exist (or, for Resolve, is no longer pending)
// - ErrAlreadyExists when an insert collides with an existing key
// - wrapped driver errors for infrastructure failures
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// StaffRepository handles persistence for staff records.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffRecord) error
	GetByID(ctx context.Context, id string) (*domain.StaffRecord, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffRecord, error)
	UpdateTags(ctx context.Context, id string, tags []string) error
}

// StaffFilter narrows staff listings. Results keep insertion order.
type StaffFilter struct {
	// HoldingTag restricts to records whose tag set contains the name.
	HoldingTag *string
}

// ChangeRequestRepository stores tag change requests for both the approval
// queue and the sent ledger.
type ChangeRequestRepository interface {
	Create(ctx context.Context, req *domain.TagChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.TagChangeRequest, error)
	ListPending(ctx context.Context) ([]domain.TagChangeRequest, error)
	ListByActor(ctx context.Context, actor string) ([]domain.TagChangeRequest, error)
	Resolve(ctx context.Context, id string, resolution Resolution) (*domain.TagChangeRequest, error)
	CountPending(ctx context.Context) (int, error)
}

// Resolution captures the single pending -> approved/rejected transition.
type Resolution struct {
	Status     domain.RequestStatus
	Note       string
	ResolvedBy string
	ResolvedAt time.Time
}

// TagCatalogRepository keeps the explicit list of assignable tag names.
type TagCatalogRepository interface {
	Add(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Rename(ctx context.Context, oldName, newName string) error
	Remove(ctx context.Context, name string) error
}

// Store bundles the governance repositories behind one transactional boundary.
// RunInTx calls are serialized per store; fn sees a Store scoped to the
// transaction and its writes are discarded when it returns an error.
type Store interface {
	Staff() StaffRepository
	Requests() ChangeRequestRepository
	Catalog() TagCatalogRepository
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func translateNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
