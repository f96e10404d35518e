package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/pkg/models"
)

// ProfileCache fronts the store with a Redis read-through cache.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewProfileCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *ProfileCache {
	return &ProfileCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("interest_profile:%s", userID.String())
}

// Get returns the cached profile or (nil, nil) on a miss.
func (c *ProfileCache) Get(ctx context.Context, userID uuid.UUID) (*models.InterestProfile, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile cache: %w", err)
	}

	var profile models.InterestProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		// Stale or corrupt entry, treat as a miss.
		c.logger.WithError(err).WithField("user_id", userID).Warn("Dropping unreadable cached profile")
		c.client.Del(ctx, cacheKey(userID))
		return nil, nil
	}
	return &profile, nil
}

func (c *ProfileCache) Set(ctx context.Context, profile *models.InterestProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(profile.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate profile cache")
	}
}
