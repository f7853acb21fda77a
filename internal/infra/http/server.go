package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv *http.Server
}

func New(addr string, exposeMetrics bool, svc Service, log *slog.Logger) *Server {
	return &Server{srv: &http.Server{Addr: addr, Handler: newMux(exposeMetrics, svc, log)}}
}

func newMux(exposeMetrics bool, svc Service, log *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	h := &handlers{svc: svc, log: log}
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("POST /api/categories", h.createCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.deleteCategory)
	mux.HandleFunc("GET /api/materials", h.listMaterials)
	mux.HandleFunc("POST /api/materials", h.createMaterial)
	mux.HandleFunc("DELETE /api/materials/{id}", h.deleteMaterial)
	mux.HandleFunc("POST /api/materials/{id}/adjust", h.adjustStock)
	mux.HandleFunc("GET /api/transactions", h.listTransactions)
	mux.HandleFunc("GET /api/export/materials.xlsx", h.exportMaterials)
	mux.HandleFunc("GET /api/export/transactions.xlsx", h.exportTransactions)

	return mux
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
