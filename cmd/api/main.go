package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/accessibly/ticketsync/internal/application"
	appsync "github.com/accessibly/ticketsync/internal/application/sync"
	"github.com/accessibly/ticketsync/internal/config"
	domai "github.com/accessibly/ticketsync/internal/domain/ai"
	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/scans"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
	aiclient "github.com/accessibly/ticketsync/internal/infra/ai/openai"
	mysqlp "github.com/accessibly/ticketsync/internal/infra/db/mysql"
	postgresp "github.com/accessibly/ticketsync/internal/infra/db/postgres"
	"github.com/accessibly/ticketsync/internal/infra/httpserver"
	"github.com/accessibly/ticketsync/internal/infra/secrets"
	minioStore "github.com/accessibly/ticketsync/internal/infra/storage"
	"github.com/accessibly/ticketsync/internal/infra/tracker"
	"github.com/accessibly/ticketsync/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, issueRepo, scanRepo, mappingStore, integrationRepo, err := connectRepos(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()

	decrypter, err := secrets.NewAESGCM(cfg.Secrets.Key)
	if err != nil {
		log.Fatalf("secrets init error: %v", err)
	}

	// scan artifact store is optional; without it only inline payloads load
	var artifacts scans.ArtifactStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	var suggest domai.Client
	if cfg.OpenAI.APIKey != "" {
		suggest = aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	svc := &appsync.Service{
		Issues:       issueRepo,
		Scans:        scanRepo,
		Artifacts:    artifacts,
		Mappings:     mappingStore,
		Integrations: integrationRepo,
		Trackers: &tracker.Factory{
			Decrypter:    decrypter,
			DashboardURL: cfg.Dashboard.BaseURL,
		},
		Suggest: suggest,
		Clock:   application.SystemClock{},
	}

	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	})

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	if cfg.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}
	mux.Mount("/", httpserver.NewRouter(svc, health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // sync calls wait on tracker round-trips
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// connectRepos opens the configured driver and builds the repo set on it.
func connectRepos(ctx context.Context, cfg *config.Config) (*sql.DB, issues.Repository, scans.Repository, tickets.MappingStore, integrations.Resolver, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		return db,
			postgresp.NewIssueRepository(db),
			postgresp.NewScanRepository(db),
			postgresp.NewMappingStore(db),
			postgresp.NewIntegrationRepository(db),
			nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		return db,
			mysqlp.NewIssueRepository(db),
			mysqlp.NewScanRepository(db),
			mysqlp.NewMappingStore(db),
			mysqlp.NewIntegrationRepository(db),
			nil
	}
	return nil, nil, nil, nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
}
