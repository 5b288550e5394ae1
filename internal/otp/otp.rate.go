package otp

import (
	"context"
	"strconv"
	"time"

	"auth-service/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// CheckCooldown reports whether a cooldown marker is live for the target;
// the caller must refuse to resend while it is.
func (s *Service) CheckCooldown(ctx context.Context, target string) (bool, error) {
	return s.cache.Exists(ctx, nsCooldown, target)
}

// SetCooldown writes the cooldown marker. Presence alone is the signal.
func (s *Service) SetCooldown(ctx context.Context, target string) error {
	return s.cache.Set(ctx, nsCooldown, target, 1, s.cooldown)
}

// CooldownRemaining returns how long the target must wait, 0 when no
// cooldown is active.
func (s *Service) CooldownRemaining(ctx context.Context, target string) (time.Duration, error) {
	ttl, err := s.cache.GetTTL(ctx, nsCooldown, target)
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// CheckDailyLimit reports whether the target has hit the per-day send cap.
func (s *Service) CheckDailyLimit(ctx context.Context, target string, maxDaily int) (bool, error) {
	val, err := s.cache.Get(ctx, nsDaily, target)
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return false, err
	}
	return count >= maxDaily, nil
}

// IncrementDailyCounter bumps the counter and refreshes its TTL on every
// increment; the window is a rolling day from the last send, not a calendar
// day.
func (s *Service) IncrementDailyCounter(ctx context.Context, target string) error {
	return s.cache.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, cache.Key(nsDaily, target))
		pipe.Expire(ctx, cache.Key(nsDaily, target), dailyWindow)
		return nil
	})
}
