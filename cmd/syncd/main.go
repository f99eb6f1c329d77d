// Command syncd consumes entry events and mirrors remote collections into the
// local store so subscribed household views refresh without polling Postgres.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/allhaile/puppyTrackr-sub000/internal/config"
	"github.com/allhaile/puppyTrackr-sub000/internal/consumer"
	"github.com/allhaile/puppyTrackr-sub000/internal/localstore"
	"github.com/allhaile/puppyTrackr-sub000/internal/notify"
	persistence "github.com/allhaile/puppyTrackr-sub000/internal/persistence/postgres"
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

	store := localstore.NewStore(db, localstore.NewHub())
	repo := persistence.NewRepository(pool)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.ConsumerGroupID,
		Topic:   notify.EntryEventsTopic,
	})
	defer reader.Close()

	processor := consumer.NewProcessor(reader, consumer.NewSyncHandler(repo, store))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		cancel()
	}()

	log.Printf("syncd consuming %s as group %s", notify.EntryEventsTopic, cfg.ConsumerGroupID)
	if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("processor error: %v", err)
	}
}
