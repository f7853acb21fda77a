package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mkarpushin/skladd/internal/domain/categories"
	"github.com/mkarpushin/skladd/internal/domain/inventory"
	"github.com/mkarpushin/skladd/internal/domain/ledger"
	"github.com/mkarpushin/skladd/internal/domain/materials"
	"github.com/mkarpushin/skladd/internal/report"
)

// Service — операционная поверхность ядра; её реализует inventory.Engine.
type Service interface {
	ListCategories(ctx context.Context) ([]categories.Category, error)
	CreateCategory(ctx context.Context, name string) (int64, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListMaterials(ctx context.Context) ([]materials.Row, error)
	CreateMaterial(ctx context.Context, name, unit string, quantity, minQuantity int64, categoryID *int64) (int64, error)
	AdjustStock(ctx context.Context, materialID, amount int64, t ledger.EntryType) (int64, error)
	DeleteMaterial(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context) ([]ledger.Row, error)
}

type handlers struct {
	svc Service
	log *slog.Logger
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит таксономию ошибок ядра в HTTP-статусы; детали
// ошибок хранилища наружу не отдаём.
func (h *handlers) writeError(w http.ResponseWriter, op string, err error) {
	observe(op, err)

	var (
		ve *inventory.ValidationError
		nf *inventory.NotFoundError
		is *inventory.InsufficientStockError
		ce *inventory.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: ve.Error()})
	case errors.As(err, &nf):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Detail: nf.Error()})
	case errors.As(err, &is):
		h.writeJSON(w, http.StatusConflict, errorResponse{Detail: is.Error()})
	case errors.As(err, &ce):
		h.writeJSON(w, http.StatusConflict, errorResponse{Detail: ce.Error()})
	default:
		h.log.Error("operation failed", "op", op, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "внутренняя ошибка"})
	}
}

func (h *handlers) badRequest(w http.ResponseWriter, op, detail string) {
	observe(op, errors.New(detail))
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detail})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

/* Categories */

type categoryJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, "list_categories", err)
		return
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryJSON{ID: c.ID, Name: c.Name})
	}
	observe("list_categories", nil)
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "create_category", "некорректное тело запроса")
		return
	}
	id, err := h.svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, "create_category", err)
		return
	}
	observe("create_category", nil)
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.badRequest(w, "delete_category", "некорректный ID")
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, "delete_category", err)
		return
	}
	observe("delete_category", nil)
	w.WriteHeader(http.StatusNoContent)
}

/* Materials */

type materialJSON struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	Quantity     int64  `json:"quantity"`
	MinQuantity  int64  `json:"min_quantity"`
	CategoryName string `json:"category_name"`
}

func (h *handlers) listMaterials(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListMaterials(r.Context())
	if err != nil {
		h.writeError(w, "list_materials", err)
		return
	}
	out := make([]materialJSON, 0, len(items))
	for _, m := range items {
		out = append(out, materialJSON{
			ID:           m.ID,
			Name:         m.Name,
			Unit:         m.Unit,
			Quantity:     m.Quantity,
			MinQuantity:  m.MinQuantity,
			CategoryName: m.CategoryName,
		})
	}
	observe("list_materials", nil)
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handlers) createMaterial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Unit        string `json:"unit"`
		Quantity    int64  `json:"quantity"`
		MinQuantity int64  `json:"min_quantity"`
		CategoryID  *int64 `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "create_material", "некорректное тело запроса")
		return
	}
	id, err := h.svc.CreateMaterial(r.Context(), req.Name, req.Unit, req.Quantity, req.MinQuantity, req.CategoryID)
	if err != nil {
		h.writeError(w, "create_material", err)
		return
	}
	observe("create_material", nil)
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *handlers) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.badRequest(w, "adjust_stock", "некорректный ID")
		return
	}
	var req struct {
		Amount    int64  `json:"amount"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "adjust_stock", "некорректное тело запроса")
		return
	}
	t, err := ledger.ParseType(req.Direction)
	if err != nil {
		h.badRequest(w, "adjust_stock", err.Error())
		return
	}
	newQty, err := h.svc.AdjustStock(r.Context(), id, req.Amount, t)
	if err != nil {
		h.writeError(w, "adjust_stock", err)
		return
	}
	observe("adjust_stock", nil)
	h.writeJSON(w, http.StatusOK, map[string]int64{"quantity": newQty})
}

func (h *handlers) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.badRequest(w, "delete_material", "некорректный ID")
		return
	}
	if err := h.svc.DeleteMaterial(r.Context(), id); err != nil {
		h.writeError(w, "delete_material", err)
		return
	}
	observe("delete_material", nil)
	w.WriteHeader(http.StatusNoContent)
}

/* Transactions */

type transactionJSON struct {
	ID            int64     `json:"id"`
	MaterialName  string    `json:"material_name"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Comment       string    `json:"comment"`
	OperationDate time.Time `json:"operation_date"`
}

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		h.writeError(w, "list_transactions", err)
		return
	}
	out := make([]transactionJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, transactionJSON{
			ID:            e.ID,
			MaterialName:  e.MaterialName,
			Type:          string(e.Type),
			Amount:        e.Amount,
			Comment:       e.Comment,
			OperationDate: e.OperationDate,
		})
	}
	observe("list_transactions", nil)
	h.writeJSON(w, http.StatusOK, out)
}

/* Exports */

func (h *handlers) writeWorkbook(w http.ResponseWriter, op, filename string, build func() error) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := build(); err != nil {
		h.log.Error("export failed", "op", op, "err", err)
	}
}

func (h *handlers) exportMaterials(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListMaterials(r.Context())
	if err != nil {
		h.writeError(w, "export_materials", err)
		return
	}
	f, err := report.Materials(items)
	if err != nil {
		h.writeError(w, "export_materials", err)
		return
	}
	defer func() { _ = f.Close() }()
	observe("export_materials", nil)
	h.writeWorkbook(w, "export_materials", "materials.xlsx", func() error { return f.Write(w) })
}

func (h *handlers) exportTransactions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		h.writeError(w, "export_transactions", err)
		return
	}
	f, err := report.Transactions(entries)
	if err != nil {
		h.writeError(w, "export_transactions", err)
		return
	}
	defer func() { _ = f.Close() }()
	observe("export_transactions", nil)
	h.writeWorkbook(w, "export_transactions", "transactions.xlsx", func() error { return f.Write(w) })
}
