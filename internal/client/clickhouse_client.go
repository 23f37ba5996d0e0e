package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"loan-portal-service/internal/config"
	"loan-portal-service/internal/models"
	"loan-portal-service/internal/util"
)

const applicationEventsDDL = `
CREATE TABLE IF NOT EXISTS application_events (
    event_id       String,
    event_type     String,
    application_id String,
    user_id        String,
    loan_amount    Float64,
    loan_purpose   String,
    status         String,
    occurred_at    DateTime64(3, 'UTC'),
    event_date     Date
) ENGINE = MergeTree()
PARTITION BY event_date
ORDER BY (event_date, user_id, occurred_at)`

// ClickHouseClient is the analytics sink for application events.
type ClickHouseClient struct {
	conn   driver.Conn
	config *config.ClickhouseConfig
	mu     sync.RWMutex
}

func NewClickHouseClient(cfg *config.Config, logger *zap.Logger) (*ClickHouseClient, error) {
	chConfig := cfg.Clickhouse

	opts := &ch.Options{
		Addr: []string{chConfig.Addr},
		Auth: ch.Auth{
			Username: chConfig.Username,
			Password: chConfig.Password,
			Database: chConfig.Database,
		},
		DialTimeout:      30 * time.Second,
		MaxOpenConns:     50,
		MaxIdleConns:     10,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: ch.ConnOpenInOrder,
	}

	conn, err := ch.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	util.Info("ClickHouse client initialized",
		zap.String("addr", chConfig.Addr),
		zap.String("database", chConfig.Database))

	return &ClickHouseClient{
		conn:   conn,
		config: &chConfig,
	}, nil
}

// EnsureSchema creates the application_events table if it does not exist.
// Called once by the analytics worker at startup.
func (c *ClickHouseClient) EnsureSchema(ctx context.Context) error {
	if err := c.conn.Exec(ctx, applicationEventsDDL); err != nil {
		return fmt.Errorf("failed to create application_events table: %w", err)
	}
	return nil
}

// InsertApplicationEvents writes a batch of events using the native batch API.
func (c *ClickHouseClient) InsertApplicationEvents(ctx context.Context, events []models.ApplicationEvent) error {
	if len(events) == 0 {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO application_events")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, event := range events {
		occurredAt := event.OccurredAt.UTC()
		if err := batch.Append(
			event.EventID,
			event.EventType,
			event.ApplicationID,
			event.UserID,
			event.LoanAmount,
			event.LoanPurpose,
			event.Status,
			occurredAt,
			occurredAt.Truncate(24*time.Hour),
		); err != nil {
			return fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	util.Debug("Inserted application events",
		zap.Int("count", len(events)))

	return nil
}

func (c *ClickHouseClient) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.conn.Ping(ctx); err != nil {
		return fmt.Errorf("clickhouse ping failed: %w", err)
	}
	return nil
}

func (c *ClickHouseClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("failed to close clickhouse connection: %w", err)
		}
	}
	return nil
}
