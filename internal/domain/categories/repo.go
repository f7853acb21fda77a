package categories

import (
	"context"

	"github.com/mkarpushin/skladd/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

func (r *Repo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name FROM categories ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, name string) (int64, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1) RETURNING id
	`, name)
	var id int64
	return id, row.Scan(&id)
}

// Delete возвращает число удалённых строк (0 — категории не было).
func (r *Repo) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
