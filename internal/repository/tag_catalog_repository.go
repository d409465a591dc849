package repository

import "context"

type tagCatalogRepository struct {
	db DBTX
}

// NewTagCatalogRepository builds the Postgres repository.
func NewTagCatalogRepository(db DBTX) TagCatalogRepository {
	return &tagCatalogRepository{db: db}
}

// Add skips conflicting names instead of raising, so a collision does not
// abort the surrounding transaction.
func (r *tagCatalogRepository) Add(ctx context.Context, name string) error {
	cmd, err := r.db.Exec(ctx, `INSERT INTO tag_catalog (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *tagCatalogRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tag_catalog WHERE name=$1)`, name).Scan(&exists)
	return exists, err
}

func (r *tagCatalogRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM tag_catalog ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Rename renames a catalog entry; if newName is already listed the old entry is dropped.
func (r *tagCatalogRepository) Rename(ctx context.Context, oldName, newName string) error {
	const collapse = `
        DELETE FROM tag_catalog
        WHERE name=$1 AND EXISTS (SELECT 1 FROM tag_catalog WHERE name=$2)`
	if _, err := r.db.Exec(ctx, collapse, oldName, newName); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `UPDATE tag_catalog SET name=$2 WHERE name=$1`, oldName, newName)
	return err
}

func (r *tagCatalogRepository) Remove(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tag_catalog WHERE name=$1`, name)
	return err
}
