package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before block
	AttemptWindow time.Duration // window the counter lives for
	BlockDuration time.Duration // how long a block lasts
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker tracks failed login attempts per email and per IP in Redis.
// A nil client makes every method a no-op (fail open).
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	logger *SecurityLogger
}

func NewLoginTracker(config LoginTrackerConfig, client *goredis.Client, logger *SecurityLogger) *LoginTracker {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{config: config, client: client, logger: logger}
}

const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// Atomic increment that sets the TTL on first increment.
// KEYS[1] = counter key, ARGV[1] = TTL seconds
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// IsBlocked checks if the given email or IP is currently blocked
func (lt *LoginTracker) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	if lt.client == nil {
		return false, nil
	}

	keys := []string{blockedLoginUserPrefix + email}
	if ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}
	n, err := lt.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	if n > 0 {
		lt.logger.LogLoginBlocked(ctx, email)
		return true, nil
	}
	return false, nil
}

// RecordFailedAttempt increments the counters and creates a block once the
// email reaches MaxAttempts. Returns whether the email is now blocked.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip string) (bool, error) {
	if lt.client == nil {
		return false, nil
	}

	ttlSeconds := int(lt.config.AttemptWindow.Seconds())
	count, err := lt.atomicIncrement(ctx, failLoginUserPrefix+email, ttlSeconds)
	if err != nil {
		return false, fmt.Errorf("failed to increment user counter: %w", err)
	}
	if ip != "" {
		_, _ = lt.atomicIncrement(ctx, failLoginIPPrefix+ip, ttlSeconds) // best effort
	}

	if count < lt.config.MaxAttempts {
		return false, nil
	}

	if err := lt.client.Set(ctx, blockedLoginUserPrefix+email, "1", lt.config.BlockDuration).Err(); err != nil {
		return true, fmt.Errorf("failed to set user block: %w", err)
	}
	lt.logger.LogBlockCreated(ctx, email, lt.config.BlockDuration)
	return true, nil
}

func (lt *LoginTracker) atomicIncrement(ctx context.Context, key string, ttlSeconds int) (int, error) {
	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

// ClearAttempts clears failed login attempts on successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email, ip string) error {
	if lt.client == nil {
		return nil
	}
	keys := []string{failLoginUserPrefix + email}
	if ip != "" {
		keys = append(keys, failLoginIPPrefix+ip)
	}
	if err := lt.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}
