package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/mkarpushin/skladd/internal/domain/categories"
	"github.com/mkarpushin/skladd/internal/domain/ledger"
	"github.com/mkarpushin/skladd/internal/domain/materials"
)

// Комментарий, которым движок помечает свои записи в истории операций.
const opComment = "Операция через программу"

type CategoryStore interface {
	List(ctx context.Context) ([]categories.Category, error)
	Create(ctx context.Context, name string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type MaterialStore interface {
	Create(ctx context.Context, name, unit string, quantity, minQuantity int64, categoryID *int64) (int64, error)
	List(ctx context.Context) ([]materials.Row, error)
	Quantity(ctx context.Context, id int64) (int64, error)
	QuantityForUpdate(ctx context.Context, id int64) (int64, error)
	SetQuantity(ctx context.Context, id, quantity int64) error
	Delete(ctx context.Context, id int64) (int64, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

type LedgerStore interface {
	Append(ctx context.Context, materialID int64, t ledger.EntryType, amount int64, comment string) (int64, error)
	List(ctx context.Context) ([]ledger.Row, error)
	DeleteByMaterial(ctx context.Context, materialID int64) (int64, error)
}

// Stores — три хранилища поверх одного Querier (pool или tx).
type Stores struct {
	Categories CategoryStore
	Materials  MaterialStore
	Ledger     LedgerStore
}

// DB отдаёт хранилища поверх пула и выполняет замыкание в одной транзакции:
// либо все эффекты фиксируются вместе, либо ни одного.
type DB interface {
	Stores() Stores
	WithTx(ctx context.Context, fn func(s Stores) error) error
}

// Engine — ядро учёта: составные операции над материалами, категориями
// и историей. Между вызовами состояния не держит.
type Engine struct {
	db DB
}

func New(db DB) *Engine { return &Engine{db: db} }

func (e *Engine) ListCategories(ctx context.Context) ([]categories.Category, error) {
	out, err := e.db.Stores().Categories.List(ctx)
	return out, classify(err)
}

func (e *Engine) CreateCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ValidationError{Msg: "имя категории не может быть пустым"}
	}
	id, err := e.db.Stores().Categories.Create(ctx, name)
	return id, classify(err)
}

// DeleteCategory запрещён, пока на категорию ссылается хоть один материал.
// Каскада по материалам нет и не будет.
func (e *Engine) DeleteCategory(ctx context.Context, id int64) error {
	return classify(e.db.WithTx(ctx, func(s Stores) error {
		n, err := s.Materials.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{Msg: "нельзя удалить категорию: в ней есть материалы"}
		}
		deleted, err := s.Categories.Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return &NotFoundError{Msg: "категория с таким ID не найдена"}
		}
		return nil
	}))
}

func (e *Engine) ListMaterials(ctx context.Context) ([]materials.Row, error) {
	out, err := e.db.Stores().Materials.List(ctx)
	return out, classify(err)
}

// CreateMaterial не пишет запись в историю: стартовый остаток операцией
// не считается, в истории только последующие приходы и расходы.
func (e *Engine) CreateMaterial(ctx context.Context, name, unit string, quantity, minQuantity int64, categoryID *int64) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ValidationError{Msg: "название материала не может быть пустым"}
	}
	if quantity < 0 {
		return 0, &ValidationError{Msg: "количество не может быть отрицательным"}
	}
	if minQuantity < 0 {
		return 0, &ValidationError{Msg: "минимальный остаток не может быть отрицательным"}
	}
	id, err := e.db.Stores().Materials.Create(ctx, name, strings.TrimSpace(unit), quantity, minQuantity, categoryID)
	return id, classify(err)
}

// AdjustStock — единственный путь изменения остатка после создания.
// Чтение остатка, проверка расхода и парная запись в историю идут в одной
// транзакции; остаток никогда не уходит в минус.
func (e *Engine) AdjustStock(ctx context.Context, materialID, amount int64, t ledger.EntryType) (int64, error) {
	if amount <= 0 {
		return 0, &ValidationError{Msg: "количество должно быть положительным числом"}
	}
	if t != ledger.Income && t != ledger.Expense {
		return 0, &ValidationError{Msg: "неизвестный тип операции"}
	}

	var newQty int64
	err := e.db.WithTx(ctx, func(s Stores) error {
		qty, err := s.Materials.QuantityForUpdate(ctx, materialID)
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Msg: "материал с таким ID не найден"}
		}
		if err != nil {
			return err
		}

		if t == ledger.Expense {
			if qty < amount {
				return &InsufficientStockError{Available: qty, Requested: amount}
			}
			newQty = qty - amount
		} else {
			newQty = qty + amount
		}

		if err := s.Materials.SetQuantity(ctx, materialID, newQty); err != nil {
			return err
		}
		_, err = s.Ledger.Append(ctx, materialID, t, amount, opComment)
		return err
	})
	if err != nil {
		return 0, classify(err)
	}
	return newQty, nil
}

// DeleteMaterial каскадом убирает сначала историю операций, потом сам
// материал — в одной транзакции, чтобы не осталось осиротевших записей.
func (e *Engine) DeleteMaterial(ctx context.Context, id int64) error {
	return classify(e.db.WithTx(ctx, func(s Stores) error {
		if _, err := s.Ledger.DeleteByMaterial(ctx, id); err != nil {
			return err
		}
		deleted, err := s.Materials.Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return &NotFoundError{Msg: "материал с таким ID не найден"}
		}
		return nil
	}))
}

func (e *Engine) ListTransactions(ctx context.Context) ([]ledger.Row, error) {
	out, err := e.db.Stores().Ledger.List(ctx)
	return out, classify(err)
}
