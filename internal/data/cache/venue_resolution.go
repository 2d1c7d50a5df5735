package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/modules/venuematch"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

const (
	DefaultResolutionTTL = 24 * time.Hour
	resolutionKeyPrefix  = "venue:resolution:v1:"
)

// VenueResolutionCache stores terminal identity-resolution outcomes.
// A nil client turns every call into a miss.
type VenueResolutionCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewVenueResolutionCache(rdb *goredis.Client, ttl time.Duration, baseLog *logger.Logger) *VenueResolutionCache {
	if ttl <= 0 {
		ttl = DefaultResolutionTTL
	}
	return &VenueResolutionCache{rdb: rdb, ttl: ttl, log: baseLog.With("repo", "VenueResolutionCache")}
}

// ResolutionKey is stable across formatting differences that normalization removes.
func ResolutionKey(q venue.Query) string {
	sum := sha256.Sum256([]byte(venuematch.Normalize(q.Name) + "|" + venuematch.Normalize(q.Address) + "|" + venuematch.Normalize(q.Locality)))
	return resolutionKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *VenueResolutionCache) Get(ctx context.Context, q venue.Query) (venue.Resolution, bool, error) {
	if c == nil || c.rdb == nil {
		return venue.Resolution{}, false, nil
	}
	raw, err := c.rdb.Get(ctx, ResolutionKey(q)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return venue.Resolution{}, false, nil
	}
	if err != nil {
		return venue.Resolution{}, false, fmt.Errorf("venue resolution cache get: %w", err)
	}
	var res venue.Resolution
	if err := json.Unmarshal(raw, &res); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		c.log.Warn("Dropping undecodable cached resolution", "error", err)
		return venue.Resolution{}, false, nil
	}
	return res, true, nil
}

// Set ignores non-terminal outcomes.
func (c *VenueResolutionCache) Set(ctx context.Context, q venue.Query, res venue.Resolution) error {
	if c == nil || c.rdb == nil || !res.Terminal() {
		return nil
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, ResolutionKey(q), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("venue resolution cache set: %w", err)
	}
	return nil
}
