package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/leaguedesk/roster-service/internal/domain"
)

type staffRepository struct {
	db DBTX
}

// NewStaffRepository instantiates the Postgres repository.
func NewStaffRepository(db DBTX) StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, name, role, current_club, tags, profile_privacy, history, created_at, updated_at`

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffRecord) error {
	const query = `
        INSERT INTO staff_records (id, name, role, current_club, tags, profile_privacy, history)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (id) DO NOTHING
        RETURNING created_at, updated_at`

	history := staff.History
	if history == nil {
		history = []domain.EmploymentEntry{}
	}

	err := r.db.QueryRow(ctx, query,
		staff.ID,
		staff.Name,
		staff.Role,
		staff.CurrentClub,
		domain.CloneTags(staff.Tags),
		staff.ProfilePrivacy,
		history,
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyExists
	}
	return err
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffRecord, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_records WHERE id=$1`

	staff, err := scanStaff(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffRecord, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_records`
	args := []any{}
	if filter.HoldingTag != nil {
		args = append(args, *filter.HoldingTag)
		query += ` WHERE $1 = ANY(tags)`
	}
	query += ` ORDER BY seq ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StaffRecord{}
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) UpdateTags(ctx context.Context, id string, tags []string) error {
	const query = `UPDATE staff_records SET tags=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, domain.CloneTags(tags), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStaff(row pgx.Row) (*domain.StaffRecord, error) {
	var staff domain.StaffRecord
	if err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Role,
		&staff.CurrentClub,
		&staff.Tags,
		&staff.ProfilePrivacy,
		&staff.History,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if staff.Tags == nil {
		staff.Tags = []string{}
	}
	return &staff, nil
}
