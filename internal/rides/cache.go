package rides

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"park-portal/internal/models"
)

const (
	rideKeyPrefix = "ride:"
	allRidesKey   = "rides:all"
)

// RedisCache is a read-through cache for catalog records. Cache errors are
// swallowed: a miss costs one DB round trip, never a failed request.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) GetRide(ctx context.Context, id string) (*models.Ride, bool) {
	data, err := c.Client.Get(ctx, rideKeyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var ride models.Ride
	if err := json.Unmarshal(data, &ride); err != nil {
		return nil, false
	}
	return &ride, true
}

func (c *RedisCache) SetRide(ctx context.Context, ride models.Ride) {
	data, err := json.Marshal(ride)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, rideKeyPrefix+ride.ID, data, c.TTL).Err()
}

func (c *RedisCache) GetAll(ctx context.Context) ([]models.Ride, bool) {
	data, err := c.Client.Get(ctx, allRidesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rides []models.Ride
	if err := json.Unmarshal(data, &rides); err != nil {
		return nil, false
	}
	return rides, true
}

func (c *RedisCache) SetAll(ctx context.Context, rides []models.Ride) {
	data, err := json.Marshal(rides)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, allRidesKey, data, c.TTL).Err()
}
