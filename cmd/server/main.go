package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contesthub/internal/api"
	"contesthub/internal/app/migration"
	"contesthub/internal/app/service"
	"contesthub/internal/domain/repository"
	"contesthub/internal/domain/repository/memory"
	"contesthub/internal/platform/cache"
	"contesthub/internal/platform/config"
	"contesthub/internal/platform/database"
	"contesthub/internal/platform/identity"
	"contesthub/internal/platform/payment"

	"github.com/shopspring/decimal"
)

type repositories struct {
	users          repository.UserRepository
	contests       repository.ContestRepository
	participations repository.ParticipationRepository
	submissions    repository.SubmissionRepository
	payments       repository.PaymentRepository
}

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// Prices and amounts go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 2. Initialize Storage
	var repos repositories
	if cfg.DBDriver == "memory" {
		store := memory.NewStore()
		repos = repositories{store.Users(), store.Contests(), store.Participations(), store.Submissions(), store.Payments()}
		log.Println("WARN: using in-memory store; data is lost on restart")
	} else {
		db, err := database.Connect(ctx, cfg.DBConnStr)
		if err != nil {
			log.Fatalf("Could not connect to database: %v", err)
		}
		defer database.Close(db)
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("Could not prepare schema: %v", err)
		}
		repos = repositories{
			users:          repository.NewPgUserRepository(db),
			contests:       repository.NewPgContestRepository(db),
			participations: repository.NewPgParticipationRepository(db),
			submissions:    repository.NewPgSubmissionRepository(db),
			payments:       repository.NewPgPaymentRepository(db),
		}
		log.Println("Database connected.")
	}

	// 3. Initialize Redis
	var (
		lock      migration.Locker
		checkouts service.CheckoutCache
	)
	if cfg.DBDriver != "memory" && cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Could not connect to Redis: %v", err)
		}
		defer cache.Close(rdb)
		lock = cache.NewLocker(rdb, cfg.MigrationLockKey, cfg.MigrationLockTTL)
		checkouts = cache.NewCheckoutStore(rdb, cfg.IdempotencyTTL)
		log.Println("Redis connected.")
	}

	// 4. Repair payment data before serving
	migrateCtx, migrateCancel := context.WithTimeout(ctx, 5*time.Minute)
	err := migration.Run(migrateCtx, repos.payments, lock)
	migrateCancel()
	if err != nil {
		log.Fatalf("Payment deduplication failed: %v", err)
	}
	log.Println("Payment ledger verified.")

	// 5. Initialize External Providers
	verifier, err := identity.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Could not initialize identity provider: %v", err)
	}
	provider, err := payment.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Could not initialize payment provider: %v", err)
	}
	log.Printf("Identity provider %q and payment provider %q ready.", cfg.IdentityProvider, provider.Name())

	// 6. Initialize Services
	services := api.Services{
		Users:          service.NewUserService(repos.users),
		Contests:       service.NewContestService(repos.contests, repos.participations),
		Participations: service.NewParticipationService(repos.participations, repos.contests),
		Submissions:    service.NewSubmissionService(repos.submissions, repos.participations, repos.contests),
		Payments:       service.NewPaymentService(provider, repos.payments, repos.contests, repos.participations, checkouts, cfg.SiteDomain),
		Leaderboard:    service.NewLeaderboardService(repos.users),
	}

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(services, verifier, repos.users, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully.")
}
