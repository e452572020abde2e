package claims

import (
	"context"
	"errors"
	"fmt"
	"pdp-route-service/internal/platform/obs"
	"pdp-route-service/internal/ports"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var _ ports.ClaimRegistry = (*RedisRegistry)(nil)

// releaseScript deletes the claim only when ARGV[1] still owns it.
// Returns 1 when released, 0 when nobody held it and -1 for another owner.
var releaseScript = redis.NewScript(`
local owner = redis.call("GET", KEYS[1])
if not owner then
	return 0
end
if owner == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return -1
`)

// RedisRegistry keeps parcel claims in Redis so that agents running in
// different processes never serve the same parcel.
type RedisRegistry struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRegistry wraps an existing client. A zero ttl keeps claims until
// they are released.
func NewRedisRegistry(rdb *redis.Client, prefix string, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, prefix: prefix, ttl: ttl}
}

// NewRedisRegistryFromURL connects to the Redis server at url.
func NewRedisRegistryFromURL(url, prefix string, ttl time.Duration) (*RedisRegistry, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("new redis registry: parse url: %w", err)
	}
	return NewRedisRegistry(redis.NewClient(opt), prefix, ttl), nil
}

func (r *RedisRegistry) key(parcelID string) string { return r.prefix + "claim:" + parcelID }

// Acquire grants the parcel to ownerID unless someone else holds it.
// Acquiring a parcel one already owns succeeds.
func (r *RedisRegistry) Acquire(ctx context.Context, parcelID, ownerID string) (err error) {
	defer obs.Time(ctx, "claims.redis.Acquire")(&err)

	ok, err := r.rdb.SetNX(ctx, r.key(parcelID), ownerID, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire claim: parcel %s: %w", parcelID, err)
	}
	if ok {
		return nil
	}

	owner, err := r.Owner(ctx, parcelID)
	if err != nil {
		return err
	}
	if owner != ownerID {
		return fmt.Errorf("acquire claim: parcel %s held by %s: %w", parcelID, owner, ports.ErrClaimTaken)
	}
	return nil
}

func (r *RedisRegistry) Release(ctx context.Context, parcelID, ownerID string) (err error) {
	defer obs.Time(ctx, "claims.redis.Release")(&err)

	res, err := releaseScript.Run(ctx, r.rdb, []string{r.key(parcelID)}, ownerID).Int()
	if err != nil {
		return fmt.Errorf("release claim: parcel %s: %w", parcelID, err)
	}
	if res < 0 {
		return fmt.Errorf("release claim: parcel %s is held by another owner: %w", parcelID, ports.ErrClaimTaken)
	}
	return nil
}

func (r *RedisRegistry) Owner(ctx context.Context, parcelID string) (string, error) {
	owner, err := r.rdb.Get(ctx, r.key(parcelID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("claim owner: parcel %s: %w", parcelID, err)
	}
	return owner, nil
}

// Ping checks connectivity, used by the health endpoint.
func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisRegistry) Close() error { return r.rdb.Close() }
