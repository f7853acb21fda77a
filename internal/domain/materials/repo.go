package materials

import (
	"context"

	"github.com/mkarpushin/skladd/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

func (r *Repo) Create(ctx context.Context, name, unit string, quantity, minQuantity int64, categoryID *int64) (int64, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO materials (name, unit, quantity, min_quantity, category_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, name, unit, quantity, minQuantity, categoryID)
	var id int64
	return id, row.Scan(&id)
}

func (r *Repo) List(ctx context.Context) ([]Row, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.name, m.unit, m.quantity, m.min_quantity, COALESCE(c.name, '')
		FROM materials m
		LEFT JOIN categories c ON m.category_id = c.id
		ORDER BY m.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var m Row
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.Quantity, &m.MinQuantity, &m.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Quantity возвращает текущий остаток; pgx.ErrNoRows, если материала нет.
func (r *Repo) Quantity(ctx context.Context, id int64) (int64, error) {
	var qty int64
	err := r.db.QueryRow(ctx, `SELECT quantity FROM materials WHERE id=$1`, id).Scan(&qty)
	return qty, err
}

// QuantityForUpdate — то же чтение, но с блокировкой строки: вызывается
// внутри транзакции AdjustStock, чтобы параллельные расходы по одному
// материалу выстраивались в очередь.
func (r *Repo) QuantityForUpdate(ctx context.Context, id int64) (int64, error) {
	var qty int64
	err := r.db.QueryRow(ctx, `SELECT quantity FROM materials WHERE id=$1 FOR UPDATE`, id).Scan(&qty)
	return qty, err
}

func (r *Repo) SetQuantity(ctx context.Context, id, quantity int64) error {
	_, err := r.db.Exec(ctx, `UPDATE materials SET quantity=$2 WHERE id=$1`, id, quantity)
	return err
}

// Delete возвращает число удалённых строк; каскад по транзакциям — забота движка.
func (r *Repo) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM materials WHERE category_id=$1`, categoryID).Scan(&n)
	return n, err
}
