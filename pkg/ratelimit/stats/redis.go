package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder increments hash counters in Redis.
//
// Layout under the prefix (default "hello:ratelimit:stats"):
//
//	<prefix>:total                 allowed / rejected, never expires
//	<prefix>:minute:<YYYYMMDDhhmm> allowed / rejected, expires after TTL
//	<prefix>:route                 "<route pattern>:<field>", expires after TTL
//	<prefix>:key:<client>          allowed / rejected, only with key tracking
//
// Route fields come from registered patterns, so the route hash stays as
// small as the route table. Only statistics live in Redis; bucket state
// stays in process.
//
// Record does a network round trip. Wrap the recorder in an AsyncRecorder
// before handing it to the admission gate.
type RedisRecorder struct {
	rdb redis.UniversalClient

	prefix    string
	ttl       time.Duration
	perMinute bool
	trackKeys bool
}

// RedisOption configures a RedisRecorder.
type RedisOption func(*RedisRecorder)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisRecorder) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithTTL sets the expiry of time-bucketed and per-client keys.
func WithTTL(d time.Duration) RedisOption {
	return func(r *RedisRecorder) { r.ttl = d }
}

// WithMinuteBuckets toggles per-minute counters.
func WithMinuteBuckets(enabled bool) RedisOption {
	return func(r *RedisRecorder) { r.perMinute = enabled }
}

// WithRedisKeyTracking enables per-client counters.
func WithRedisKeyTracking(track bool) RedisOption {
	return func(r *RedisRecorder) { r.trackKeys = track }
}

// NewRedisRecorder creates a recorder writing through rdb.
func NewRedisRecorder(rdb redis.UniversalClient, opts ...RedisOption) *RedisRecorder {
	r := &RedisRecorder{
		rdb:       rdb,
		prefix:    "hello:ratelimit:stats",
		ttl:       24 * time.Hour,
		perMinute: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record implements Recorder. All increments go out in one pipeline.
func (r *RedisRecorder) Record(ctx context.Context, ev Event) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := fieldFor(ev.Allowed)

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.totalKey(), field, 1)

	if r.perMinute {
		bucketKey := fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if r.ttl > 0 {
			pipe.Expire(ctx, bucketKey, r.ttl)
		}
	}

	if ev.Route != "" {
		routeKey := r.prefix + ":route"
		pipe.HIncrBy(ctx, routeKey, ev.Route+":"+field, 1)
		if r.ttl > 0 {
			pipe.Expire(ctx, routeKey, r.ttl)
		}
	}

	if r.trackKeys && ev.Key != "" {
		keyKey := r.prefix + ":key:" + ev.Key
		pipe.HIncrBy(ctx, keyKey, field, 1)
		if r.ttl > 0 {
			pipe.Expire(ctx, keyKey, r.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record admission stats: %w", err)
	}
	return nil
}

// Total implements Reader.
func (r *RedisRecorder) Total(ctx context.Context) (Counters, error) {
	vals, err := r.rdb.HGetAll(ctx, r.totalKey()).Result()
	if err != nil {
		return Counters{}, fmt.Errorf("read admission stats: %w", err)
	}

	var c Counters
	if v, ok := vals["allowed"]; ok {
		c.Allowed, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := vals["rejected"]; ok {
		c.Rejected, _ = strconv.ParseInt(v, 10, 64)
	}
	return c, nil
}

// Ping checks connectivity to Redis.
func (r *RedisRecorder) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisRecorder) Close() error {
	return r.rdb.Close()
}

func (r *RedisRecorder) totalKey() string {
	return r.prefix + ":total"
}

func fieldFor(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "rejected"
}
