package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mkarpushin/skladd/internal/domain/categories"
	"github.com/mkarpushin/skladd/internal/domain/inventory"
	"github.com/mkarpushin/skladd/internal/domain/ledger"
	"github.com/mkarpushin/skladd/internal/domain/materials"
)

/* ── Service stub ───────────────────────────────────────────────────────── */

type stubService struct {
	cats    []categories.Category
	mats    []materials.Row
	entries []ledger.Row

	createCategoryErr error
	deleteCategoryErr error
	createMaterialErr error
	adjustErr         error
	deleteMaterialErr error

	adjustedID     int64
	adjustedAmount int64
	adjustedType   ledger.EntryType
	newQuantity    int64
}

func (s *stubService) ListCategories(context.Context) ([]categories.Category, error) {
	return s.cats, nil
}

func (s *stubService) CreateCategory(_ context.Context, name string) (int64, error) {
	if s.createCategoryErr != nil {
		return 0, s.createCategoryErr
	}
	return 1, nil
}

func (s *stubService) DeleteCategory(_ context.Context, id int64) error {
	return s.deleteCategoryErr
}

func (s *stubService) ListMaterials(context.Context) ([]materials.Row, error) {
	return s.mats, nil
}

func (s *stubService) CreateMaterial(_ context.Context, name, unit string, quantity, minQuantity int64, categoryID *int64) (int64, error) {
	if s.createMaterialErr != nil {
		return 0, s.createMaterialErr
	}
	return 7, nil
}

func (s *stubService) AdjustStock(_ context.Context, materialID, amount int64, t ledger.EntryType) (int64, error) {
	if s.adjustErr != nil {
		return 0, s.adjustErr
	}
	s.adjustedID, s.adjustedAmount, s.adjustedType = materialID, amount, t
	return s.newQuantity, nil
}

func (s *stubService) DeleteMaterial(_ context.Context, id int64) error {
	return s.deleteMaterialErr
}

func (s *stubService) ListTransactions(context.Context) ([]ledger.Row, error) {
	return s.entries, nil
}

func newTestServer(t *testing.T, svc Service) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	srv := httptest.NewServer(newMux(false, svc, log))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

/* ── Tests ──────────────────────────────────────────────────────────────── */

func TestListCategoriesJSON(t *testing.T) {
	svc := &stubService{cats: []categories.Category{{ID: 1, Name: "Крепёж"}, {ID: 2, Name: "Лаки"}}}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/categories", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 2)
	assert.Equal(t, "Крепёж", out[0]["name"])
}

func TestCreateCategoryValidationMapsTo400(t *testing.T) {
	svc := &stubService{createCategoryErr: &inventory.ValidationError{Msg: "имя категории не может быть пустым"}}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/categories", map[string]string{"name": ""})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "имя категории не может быть пустым", out["detail"])
}

func TestDeleteCategoryConflictMapsTo409(t *testing.T) {
	svc := &stubService{deleteCategoryErr: &inventory.ConflictError{Msg: "нельзя удалить категорию: в ней есть материалы"}}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/categories/3", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdjustStockRoundTrip(t *testing.T) {
	svc := &stubService{newQuantity: 130}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/materials/5/adjust",
		map[string]any{"amount": 30, "direction": "income"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(130), out["quantity"])
	assert.Equal(t, int64(5), svc.adjustedID)
	assert.Equal(t, int64(30), svc.adjustedAmount)
	assert.Equal(t, ledger.Income, svc.adjustedType)
}

func TestAdjustStockBadDirection(t *testing.T) {
	svc := &stubService{}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/materials/5/adjust",
		map[string]any{"amount": 30, "direction": "transfer"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdjustStockInsufficientMapsTo409(t *testing.T) {
	svc := &stubService{adjustErr: &inventory.InsufficientStockError{Available: 130, Requested: 200}}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/materials/5/adjust",
		map[string]any{"amount": 200, "direction": "expense"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdjustStockNotFoundMapsTo404(t *testing.T) {
	svc := &stubService{adjustErr: &inventory.NotFoundError{Msg: "материал с таким ID не найден"}}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/materials/99/adjust",
		map[string]any{"amount": 1, "direction": "income"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdjustStockBadID(t *testing.T) {
	svc := &stubService{}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/materials/abc/adjust",
		map[string]any{"amount": 1, "direction": "income"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStoreErrorMapsTo500(t *testing.T) {
	svc := &stubService{deleteMaterialErr: &inventory.StoreError{Err: errors.New("connection reset")}}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/materials/5", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "внутренняя ошибка", out["detail"], "детали хранилища наружу не уходят")
}

func TestCreateMaterialMalformedBody(t *testing.T) {
	svc := &stubService{}
	srv := newTestServer(t, svc)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/materials", bytes.NewReader([]byte(`{"quantity":"many"}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportMaterialsWorkbook(t *testing.T) {
	svc := &stubService{mats: []materials.Row{
		{ID: 1, Name: "Болты", Unit: "pcs", Quantity: 100, MinQuantity: 10, CategoryName: "Крепёж"},
	}}
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/export/materials.xlsx", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "materials.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	name, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Болты", name)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubService{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
