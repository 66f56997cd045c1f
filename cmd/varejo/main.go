package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/varejo-erp/varejo-erp/internal/app"
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
	"github.com/varejo-erp/varejo-erp/internal/platform/cache"
	"github.com/varejo-erp/varejo-erp/internal/platform/db"
	"github.com/varejo-erp/varejo-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersHandler := suppliers.NewHandler(logger, suppliers.NewService(suppliersRepo))
	clientsRepo := clients.NewRepository(pool)
	clientsHandler := clients.NewHandler(logger, clients.NewService(clientsRepo))
	carriersRepo := carriers.NewRepository(pool)
	carriersHandler := carriers.NewHandler(logger, carriers.NewService(carriersRepo))
	productsRepo := products.NewRepository(pool)
	productsHandler := products.NewHandler(logger, products.NewService(productsRepo))
	categoryHandler := categories.NewHandler(logger, categories.NewService(categories.NewRepository(pool)))
	brandsHandler := brands.NewHandler(logger, brands.NewService(brands.NewRepository(pool)))
	unitsHandler := units.NewHandler(logger, units.NewService(units.NewRepository(pool)))

	paytermsRepo := payterms.NewRepository(pool)
	conditionCache := payterms.NewCachedSource(paytermsRepo, redisClient, cfg.ConditionCacheTTL, logger)
	paytermsService := payterms.NewService(paytermsRepo, conditionCache)
	paytermsHandler := payterms.NewHandler(logger, paytermsService)

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, documents.Sources{
		Suppliers:  suppliersRepo,
		Clients:    clientsRepo,
		Carriers:   carriersRepo,
		Products:   productsRepo,
		Conditions: conditionCache,
	}, metrics, logger)
	documentsHandler := documents.NewHandler(logger, documentsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("jobs client", slog.Any("error", err))
		jobsClient = nil
	}
	defer func() {
		if jobsClient == nil {
			return
		}
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Pool:             pool,
		Metrics:          metrics,
		SuppliersHandler: suppliersHandler,
		ClientsHandler:   clientsHandler,
		CarriersHandler:  carriersHandler,
		ProductsHandler:  productsHandler,
		CategoryHandler:  categoryHandler,
		BrandsHandler:    brandsHandler,
		UnitsHandler:     unitsHandler,
		PaytermsHandler:  paytermsHandler,
		DocumentsHandler: documentsHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
