package ledger

import (
	"context"

	"github.com/mkarpushin/skladd/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

// Append вставляет одну неизменяемую запись; дата операции ставится базой.
func (r *Repo) Append(ctx context.Context, materialID int64, t EntryType, amount int64, comment string) (int64, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO transactions (material_id, type, amount, comment)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, materialID, string(t), amount, comment)
	var id int64
	return id, row.Scan(&id)
}

func (r *Repo) List(ctx context.Context) ([]Row, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, COALESCE(m.name, ''), t.type, t.amount, COALESCE(t.comment, ''), t.operation_date
		FROM transactions t
		LEFT JOIN materials m ON t.material_id = m.id
		ORDER BY t.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var e Row
		if err := rows.Scan(&e.ID, &e.MaterialName, &e.Type, &e.Amount, &e.Comment, &e.OperationDate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteByMaterial удаляет всю историю материала; используется только
// каскадным удалением материала.
func (r *Repo) DeleteByMaterial(ctx context.Context, materialID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE material_id=$1`, materialID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
