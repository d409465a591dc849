package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/leaguedesk/roster-service/internal/domain"
)

type changeRequestRepository struct {
	db DBTX
}

// NewChangeRequestRepository builds the Postgres repository.
func NewChangeRequestRepository(db DBTX) ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

const requestColumns = `id, staff_id, requesting_actor, old_tags, new_tags, status, response_note, resolved_by, created_at, resolved_at`

func (r *changeRequestRepository) Create(ctx context.Context, req *domain.TagChangeRequest) error {
	const query = `
        INSERT INTO tag_change_requests (id, staff_id, requesting_actor, old_tags, new_tags, status, response_note, resolved_by, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (id) DO NOTHING`
	cmd, err := r.db.Exec(ctx, query,
		req.ID,
		req.StaffID,
		req.RequestingActor,
		domain.CloneTags(req.OldTags),
		domain.CloneTags(req.NewTags),
		req.Status,
		req.ResponseNote,
		req.ResolvedBy,
		req.CreatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *changeRequestRepository) GetByID(ctx context.Context, id string) (*domain.TagChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM tag_change_requests WHERE id=$1`
	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return req, nil
}

func (r *changeRequestRepository) ListPending(ctx context.Context) ([]domain.TagChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM tag_change_requests
        WHERE status=$1 ORDER BY created_at ASC, seq ASC`
	return r.list(ctx, query, domain.RequestStatusPending)
}

func (r *changeRequestRepository) ListByActor(ctx context.Context, actor string) ([]domain.TagChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM tag_change_requests
        WHERE requesting_actor=$1 ORDER BY created_at ASC, seq ASC`
	return r.list(ctx, query, actor)
}

func (r *changeRequestRepository) CountPending(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM tag_change_requests WHERE status=$1`
	var count int
	if err := r.db.QueryRow(ctx, query, domain.RequestStatusPending).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Resolve only transitions rows that are still pending.
func (r *changeRequestRepository) Resolve(ctx context.Context, id string, resolution Resolution) (*domain.TagChangeRequest, error) {
	query := `
        UPDATE tag_change_requests
        SET status=$1, response_note=$2, resolved_by=$3, resolved_at=$4
        WHERE id=$5 AND status=$6
        RETURNING ` + requestColumns
	req, err := scanRequest(r.db.QueryRow(ctx, query,
		resolution.Status,
		resolution.Note,
		resolution.ResolvedBy,
		resolution.ResolvedAt,
		id,
		domain.RequestStatusPending,
	))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return req, nil
}

func (r *changeRequestRepository) list(ctx context.Context, query string, arg any) ([]domain.TagChangeRequest, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TagChangeRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func scanRequest(row pgx.Row) (*domain.TagChangeRequest, error) {
	var req domain.TagChangeRequest
	if err := row.Scan(
		&req.ID,
		&req.StaffID,
		&req.RequestingActor,
		&req.OldTags,
		&req.NewTags,
		&req.Status,
		&req.ResponseNote,
		&req.ResolvedBy,
		&req.CreatedAt,
		&req.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
