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

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/rules"
	"github.com/dentex-erp/dentex-erp/internal/app"
	"github.com/dentex-erp/dentex-erp/internal/banking"
	"github.com/dentex-erp/dentex-erp/internal/expenses"
	"github.com/dentex-erp/dentex-erp/internal/masterdata/companies"
	"github.com/dentex-erp/dentex-erp/internal/observability"
	"github.com/dentex-erp/dentex-erp/internal/platform/cache"
	"github.com/dentex-erp/dentex-erp/internal/platform/db"
	"github.com/dentex-erp/dentex-erp/internal/posting"
	"github.com/dentex-erp/dentex-erp/internal/purchasing"
	"github.com/dentex-erp/dentex-erp/internal/sales"
	"github.com/dentex-erp/dentex-erp/internal/shared"
	"github.com/dentex-erp/dentex-erp/jobs"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	runner := db.NewRunner(pool)
	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(runner)

	accountsRepo := accounts.NewRepository(runner)
	accountsService := accounts.NewService(accountsRepo, logger)

	rulesRepo := rules.NewCachedRepository(rules.NewRepository(runner), redisClient, cfg.RuleCacheTTL)

	journalRepo := journal.NewRepository(runner)
	journalService := journal.NewService(journalRepo, runner, auditLogger)

	salesRepo := sales.NewRepository(runner)
	purchasingRepo := purchasing.NewRepository(runner)
	expensesRepo := expenses.NewRepository(runner)
	bankingRepo := banking.NewRepository(runner)

	postingService := posting.NewService(posting.Deps{
		Tx:         runner,
		Rules:      rulesRepo,
		Accounts:   accountsRepo,
		Ledger:     journalService,
		Sales:      salesRepo,
		Purchasing: purchasingRepo,
		Expenses:   expensesRepo,
		Banking:    bankingRepo,
		Metrics:    metrics,
		Logger:     logger,
	})

	salesService := sales.NewService(salesRepo, postingService)
	purchasingService := purchasing.NewService(purchasingRepo, postingService)
	expensesService := expenses.NewService(expensesRepo, postingService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	companiesRepo := companies.NewRepository(runner)
	companiesService := companies.NewService(companiesRepo, accountsService, jobClient, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Pool:              pool,
		CompaniesHandler:  companies.NewHandler(companiesService),
		AccountsHandler:   accounts.NewHandler(accountsService),
		RulesHandler:      rules.NewHandler(rulesRepo),
		JournalHandler:    journal.NewHandler(journalService, postingService),
		SalesHandler:      sales.NewHandler(salesService),
		PurchasingHandler: purchasing.NewHandler(purchasingService),
		ExpensesHandler:   expenses.NewHandler(expensesService),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
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
