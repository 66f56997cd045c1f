package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varejo-erp/varejo-erp/internal/documents"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/brands"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/carriers"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/categories"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/clients"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/products"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/suppliers"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/units"
	"github.com/varejo-erp/varejo-erp/internal/observability"
	"github.com/varejo-erp/varejo-erp/internal/payterms"
	"github.com/varejo-erp/varejo-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Pool             *pgxpool.Pool
	Metrics          *observability.Metrics
	SuppliersHandler *suppliers.Handler
	ClientsHandler   *clients.Handler
	CarriersHandler  *carriers.Handler
	ProductsHandler  *products.Handler
	CategoryHandler  *categories.Handler
	BrandsHandler    *brands.Handler
	UnitsHandler     *units.Handler
	PaytermsHandler  *payterms.Handler
	DocumentsHandler *documents.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with default middleware and all
// mounted feature handlers.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				params.Logger.Error("health probe failed", slog.Any("error", err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	if params.SuppliersHandler != nil {
		params.SuppliersHandler.MountRoutes(r)
	}
	if params.ClientsHandler != nil {
		params.ClientsHandler.MountRoutes(r)
	}
	if params.CarriersHandler != nil {
		params.CarriersHandler.MountRoutes(r)
	}
	if params.ProductsHandler != nil {
		params.ProductsHandler.MountRoutes(r)
	}
	if params.CategoryHandler != nil {
		params.CategoryHandler.MountRoutes(r)
	}
	if params.BrandsHandler != nil {
		params.BrandsHandler.MountRoutes(r)
	}
	if params.UnitsHandler != nil {
		params.UnitsHandler.MountRoutes(r)
	}
	if params.PaytermsHandler != nil {
		params.PaytermsHandler.MountRoutes(r)
	}
	if params.DocumentsHandler != nil {
		params.DocumentsHandler.MountRoutes(r)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
