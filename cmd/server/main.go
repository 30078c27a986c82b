package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-backend/internal/auth"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/config"
	"fleet-backend/internal/database"
	"fleet-backend/internal/db"
	"fleet-backend/internal/handlers"
	h "fleet-backend/internal/http"
	"fleet-backend/internal/health"
	"fleet-backend/internal/jobs"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/repositories"
	"fleet-backend/internal/scheduler"
	"fleet-backend/internal/services"
	"fleet-backend/internal/storage"
	"fleet-backend/internal/timeutil"
	"fleet-backend/migrations"
)

func main() {
	portFlag := flag.Int("port", 0, "Server port (overrides config)")
	reconcileOnce := flag.Bool("reconcile", false, "Run the ledger reconciliation job once and exit")
	flag.Parse()

	cfg := config.Load()
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	if err := timeutil.SetLocation(cfg.Business.Timezone); err != nil {
		log.Fatalf("Invalid business timezone %q: %v", cfg.Business.Timezone, err)
	}

	pool, err := db.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer pool.Close()
	log.Printf("Connected to database: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	// Run database migrations from the embedded schema
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrator.RunMigrations(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	// Redis is optional; reports are recomputed when it is unavailable
	if err := cache.Init(cfg); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (reports will not be cached)", err)
	}
	defer cache.Close()

	// Repositories
	txManager := repositories.NewTxManager(pool)
	userRepo := repositories.NewUserRepository(pool)
	billRepo := repositories.NewBillRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	companyRepo := repositories.NewCompanyRepository(pool)
	driverRepo := repositories.NewDriverRepository(pool)
	vehicleRepo := repositories.NewVehicleRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	loadRepo := repositories.NewLoadRepository(pool)
	counterRepo := repositories.NewCounterRepository(pool)
	reportRepo := repositories.NewReportRepository(pool)
	actionLogRepo := repositories.NewActionLogRepository(pool)

	jobRunner := jobs.NewJobRunner(billRepo, paymentRepo)
	if *reconcileOnce {
		jobRunner.ReconcileLedgers()
		return
	}

	var archive storage.Archive
	s3Archive, err := storage.NewS3Archive(context.Background(), cfg)
	if err != nil {
		log.Printf("[Storage] Receipt archive disabled: %v", err)
	} else if s3Archive != nil {
		archive = s3Archive
		log.Printf("[Storage] Archiving receipts to bucket %s", cfg.Storage.Bucket)
	}

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	codeService := services.NewCodeService(counterRepo)
	userService := services.NewUserService(userRepo, jwtManager)
	auditService := services.NewAuditService(actionLogRepo)
	billService := services.NewBillService(txManager, billRepo, customerRepo)
	paymentService := services.NewPaymentService(txManager, paymentRepo, codeService)
	companyService := services.NewCompanyService(txManager, companyRepo, codeService)
	driverService := services.NewDriverService(txManager, driverRepo, codeService)
	vehicleService := services.NewVehicleService(txManager, vehicleRepo, companyRepo, paymentRepo, codeService, cfg.Business.BrokerName)
	customerService := services.NewCustomerService(customerRepo)
	loadService := services.NewLoadService(txManager, loadRepo, vehicleRepo, companyRepo, driverRepo, paymentRepo, codeService, cfg.Business.BrokerName)
	transactionService := services.NewTransactionService(txManager, companyRepo, driverRepo, vehicleRepo, loadRepo, paymentRepo, codeService, cfg.Business.BrokerName)
	reportService := services.NewReportService(reportRepo, cfg.Business.CompanyName)
	receiptService := services.NewReceiptService(paymentRepo, billRepo, archive, cfg.Business.CompanyName)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userService.EnsureBootstrapAdmin(bootCtx, cfg.Auth.BootstrapName, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
		log.Printf("[Auth] Bootstrap admin not created: %v", err)
	}
	bootCancel()

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.NewScheduler(jobRunner, cfg.Scheduler.ReconcileSpec, timeutil.Local)
		if err != nil {
			log.Fatalf("Invalid reconcile schedule %q: %v", cfg.Scheduler.ReconcileSpec, err)
		}
		sched.Start()
	}

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	router := h.NewRouter(h.Handlers{
		Auth:         handlers.NewAuthHandler(userService, auditService),
		Users:        handlers.NewUserHandler(userService, auditService),
		Bills:        handlers.NewBillHandler(billService, receiptService, auditService),
		Payments:     handlers.NewPaymentHandler(paymentService, receiptService, auditService),
		Transactions: handlers.NewTransactionHandler(transactionService, auditService),
		Loads:        handlers.NewLoadHandler(loadService, auditService),
		Fleet:        handlers.NewFleetHandler(companyService, driverService, vehicleService, auditService),
		Customers:    handlers.NewCustomerHandler(customerService, auditService),
		Reports:      handlers.NewReportHandler(reportService),
		ActionLogs:   handlers.NewAdminActionLogHandler(auditService),
		Health:       handlers.NewHealthHandler(health.NewHealthChecker(pool)),
	}, authMiddleware)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           h.Wrap(router, middleware.NewCORS(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	reportService.PreWarmDashboard()

	go func() {
		log.Printf("Server running on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	if sched != nil {
		sched.Stop()
	}
	log.Println("Server stopped")
}
