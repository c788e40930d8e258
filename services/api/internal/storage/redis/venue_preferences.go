// Package redis keeps small per-user UI preferences in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

const (
	lastVenueKeyPrefix  = "pro:last-venue:"
	DefaultLastVenueTTL = 90 * 24 * time.Hour
)

// VenuePreferences remembers the venue each user picked last. The value is
// only a form default, so it expires.
type VenuePreferences struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewVenuePreferences(client *goredis.Client, ttl time.Duration) *VenuePreferences {
	if ttl <= 0 {
		ttl = DefaultLastVenueTTL
	}
	return &VenuePreferences{client: client, ttl: ttl}
}

func (p *VenuePreferences) LastSelectedVenue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrUserRequired
	}
	venueID, err := p.client.Get(ctx, lastVenueKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get last venue: %w", err)
	}
	return venueID, nil
}

func (p *VenuePreferences) SetLastSelectedVenue(ctx context.Context, userID, venueID string) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	if venueID == "" {
		return domain.ErrVenueRequired
	}
	if err := p.client.Set(ctx, lastVenueKey(userID), venueID, p.ttl).Err(); err != nil {
		return fmt.Errorf("set last venue: %w", err)
	}
	return nil
}

// Ping is used by the health check.
func (p *VenuePreferences) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func lastVenueKey(userID string) string {
	return lastVenueKeyPrefix + userID
}
