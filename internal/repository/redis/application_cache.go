package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"loan-portal-service/internal/client"
	"loan-portal-service/internal/models"
	"loan-portal-service/internal/util"
)

const applicationsPrefix = "loan_apps:"

// ApplicationCache is the local, best-effort record cache written at
// submission time. It is the fallback source during reconciliation, so a
// miss is an empty record set, not an error.
type ApplicationCache struct {
	client *client.RedisClient
	ttl    time.Duration
}

func NewApplicationCache(client *client.RedisClient, ttl time.Duration) *ApplicationCache {
	return &ApplicationCache{client: client, ttl: ttl}
}

// GetUserApplications returns the cached records for a user. Records are
// tagged with the local source for reconciliation.
func (c *ApplicationCache) GetUserApplications(ctx context.Context, userID string) ([]models.LoanApplicationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := applicationsPrefix + userID

	raw, err := c.client.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		util.Error("Failed to read application cache",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read application cache: %w", err)
	}

	var records []models.LoanApplicationRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// a corrupt cache entry must not break reconciliation; drop it
		util.Warn("Dropping corrupt application cache entry",
			zap.String("user_id", userID),
			zap.Error(err))
		_ = c.client.Client.Del(ctx, key).Err()
		return nil, nil
	}

	for i := range records {
		records[i].Source = models.SourceLocal
	}
	return records, nil
}

// PutUserApplications replaces the cached record set for a user.
func (c *ApplicationCache) PutUserApplications(ctx context.Context, userID string, records []models.LoanApplicationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode application cache entry: %w", err)
	}

	key := applicationsPrefix + userID
	if err := c.client.Client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		util.Error("Failed to write application cache",
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("failed to write application cache: %w", err)
	}

	util.Debug("Application cache updated",
		zap.String("user_id", userID),
		zap.Int("records", len(records)),
		zap.Duration("ttl", c.ttl))

	return nil
}

// AppendUserApplication adds or replaces one record in the user's cached
// set, keyed by record id.
func (c *ApplicationCache) AppendUserApplication(ctx context.Context, record models.LoanApplicationRecord) error {
	if record.ID == "" || record.UserID == "" {
		return fmt.Errorf("cache entry requires id and user_id")
	}

	records, err := c.GetUserApplications(ctx, record.UserID)
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}

	return c.PutUserApplications(ctx, record.UserID, records)
}

// InvalidateUser drops the cached record set for a user.
func (c *ApplicationCache) InvalidateUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Client.Del(ctx, applicationsPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate application cache: %w", err)
	}
	return nil
}
