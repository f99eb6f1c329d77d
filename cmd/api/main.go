package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/allhaile/puppyTrackr-sub000/internal/api"
	"github.com/allhaile/puppyTrackr-sub000/internal/auth"
	"github.com/allhaile/puppyTrackr-sub000/internal/config"
	"github.com/allhaile/puppyTrackr-sub000/internal/importer"
	"github.com/allhaile/puppyTrackr-sub000/internal/localstore"
	"github.com/allhaile/puppyTrackr-sub000/internal/notify"
	persistence "github.com/allhaile/puppyTrackr-sub000/internal/persistence/postgres"
	httptransport "github.com/allhaile/puppyTrackr-sub000/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	db, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	defer db.Close()

	hub := localstore.NewHub()
	store := localstore.NewStore(db, hub)
	repo := persistence.NewRepository(pool)

	notifier := notify.NewKafkaNotifier(cfg.KafkaBrokers)
	defer notifier.Close()

	service := importer.NewService(repo, store, importer.WithNotifier(notifier))

	handler := api.NewHandler(service, repo, cfg.DefaultUser)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		func(r *http.Request) bool {
			return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
		},
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(logger(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("puppytrackr import service listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
