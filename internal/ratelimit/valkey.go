package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	valkeyTimeout   = 5 * time.Second
	valkeyKeyPrefix = "rate_limit:otp:"
)

// tokenBucketScript refills per_minute tokens every minute up to per_minute
// and takes one if available. Returns {allowed, remaining}.
const tokenBucketScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local per_minute = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local current = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(current[1]) or per_minute
local last_refill = tonumber(current[2]) or now

local elapsed = math.max(0, now - last_refill)
local refill = math.floor(elapsed * per_minute / 60000)
if refill > 0 then
    tokens = math.min(per_minute, tokens + refill)
    last_refill = now
end

local allowed = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', last_refill)
redis.call('EXPIRE', key, ttl)

return {allowed, tokens}
`

// ValkeyLimiter shares token buckets between instances through Valkey.
type ValkeyLimiter struct {
	client    valkey.Client
	perMinute int
	now       func() time.Time
}

// NewValkeyClient connects to a Valkey server.
func NewValkeyClient(addr, password string) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to valkey: %w", err)
	}
	return client, nil
}

func NewValkeyLimiter(client valkey.Client, perMinute int) *ValkeyLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &ValkeyLimiter{client: client, perMinute: perMinute, now: time.Now}
}

func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, valkeyTimeout)
	defer cancel()

	result := l.client.Do(ctx, l.client.B().Eval().
		Script(tokenBucketScript).
		Numkeys(1).
		Key(valkeyKeyPrefix+key).
		Arg(strconv.FormatInt(l.now().UnixMilli(), 10)).
		Arg(strconv.Itoa(l.perMinute)).
		Arg("300").
		Build())
	if err := result.Error(); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, err := result.AsIntSlice()
	if err != nil {
		return false, fmt.Errorf("failed to parse rate limit result: %w", err)
	}
	if len(values) < 2 {
		return false, fmt.Errorf("invalid rate limit result: expected 2 values, got %d", len(values))
	}

	return values[0] == 1, nil
}
