package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-portal-service/internal/client"
	"loan-portal-service/internal/config"
	"loan-portal-service/internal/models"
	"loan-portal-service/internal/util"
)

const (
	batchSize     = 200
	flushInterval = 5 * time.Second
)

// The worker drains application events from Kafka and loads them into
// ClickHouse in batches for back-office analytics.
func main() {
	cfg := config.LoadConfig()
	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)
	defer util.Sync()

	chClient, err := client.NewClickHouseClient(cfg, util.Get())
	if err != nil {
		util.Fatal("Failed to connect to ClickHouse", util.ErrorField(err))
	}
	defer chClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := chClient.EnsureSchema(ctx); err != nil {
		util.Fatal("Failed to ensure ClickHouse schema", util.ErrorField(err))
	}

	consumer, err := client.NewKafkaConsumer(
		cfg,
		cfg.Kafka.ApplicationEventsTopic,
		cfg.Kafka.ConsumerGroupID,
		util.Get(),
	)
	if err != nil {
		util.Fatal("Failed to create Kafka consumer", util.ErrorField(err))
	}
	defer consumer.Close()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		sig := <-quit
		util.Info("Shutdown signal received", util.String("signal", sig.String()))
		cancel()
	}()

	util.Info("Analytics worker started",
		util.String("topic", cfg.Kafka.ApplicationEventsTopic),
		util.String("group", cfg.Kafka.ConsumerGroupID),
	)

	run(ctx, consumer, chClient)

	util.Info("Analytics worker exited")
}

func run(ctx context.Context, consumer *client.KafkaConsumer, chClient *client.ClickHouseClient) {
	batch := make([]models.ApplicationEvent, 0, batchSize)
	lastFlush := time.Now()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// flush with a fresh context so a shutdown still drains the batch
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := chClient.InsertApplicationEvents(flushCtx, batch); err != nil {
			util.Error("Failed to insert event batch",
				util.Int("batch_size", len(batch)),
				util.ErrorField(err),
			)
		} else {
			util.Info("Flushed event batch", util.Int("batch_size", len(batch)))
		}
		batch = batch[:0]
		lastFlush = time.Now()
	}

	for {
		readCtx, cancel := context.WithTimeout(ctx, flushInterval)
		event, err := consumer.ConsumeApplicationEvent(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				flush()
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// idle topic, fall through to the interval flush
			} else {
				util.Warn("Failed to consume event", util.ErrorField(err))
			}
		} else if event != nil {
			batch = append(batch, *event)
		}

		if len(batch) >= batchSize || time.Since(lastFlush) >= flushInterval {
			flush()
		}
	}
}
