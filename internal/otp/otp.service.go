package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"auth-service/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// Redis key namespaces. One live record per target per namespace.
const (
	nsCode     = "otp"
	nsAttempts = "otp_attempts"
	nsCooldown = "otp_cooldown"
	nsDaily    = "sms_daily"
)

const dailyWindow = 24 * time.Hour

type Service struct {
	cache       *cache.Cache
	length      int
	ttl         time.Duration
	cooldown    time.Duration
	maxAttempts int
}

func NewService(c *cache.Cache, length int, ttl, cooldown time.Duration, maxAttempts int) *Service {
	return &Service{
		cache:       c,
		length:      length,
		ttl:         ttl,
		cooldown:    cooldown,
		maxAttempts: maxAttempts,
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) MaxAttempts() int { return s.maxAttempts }

// GenerateCode returns a uniformly random numeric code of the configured
// length, drawn from crypto/rand.
func (s *Service) GenerateCode() (string, error) {
	digits := make([]byte, s.length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// HashCode returns the hex SHA-256 digest of a plaintext code. Only the
// digest is ever stored.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Store writes the code digest and a zeroed attempts counter under the same
// TTL in one atomic batch, replacing any pending code for the target.
func (s *Service) Store(ctx context.Context, target, code string) error {
	digest := HashCode(code)
	err := s.cache.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cache.Key(nsCode, target), digest, s.ttl)
		pipe.Set(ctx, cache.Key(nsAttempts, target), 0, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	log.Printf("Stored OTP | Target=%s | TTL=%s", target, s.ttl)
	return nil
}

// Attempts returns the current failed-attempt count, 0 when absent.
func (s *Service) Attempts(ctx context.Context, target string) (int, error) {
	val, err := s.cache.Get(ctx, nsAttempts, target)
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("attempts counter corrupt for %s: %w", target, err)
	}
	return n, nil
}

// Verify compares the submitted code against the stored digest.
//
// Absent or expired record: false. Attempts at or above the cap: false,
// before any comparison. Mismatch: increments the counter and returns false;
// the code stays live for further tries until the cap or TTL. Match: deletes
// code and counter atomically and returns true, making every code single-use.
func (s *Service) Verify(ctx context.Context, target, code string) (bool, error) {
	stored, err := s.cache.Get(ctx, nsCode, target)
	if errors.Is(err, redis.Nil) {
		log.Printf("OTP not found or expired | Target=%s", target)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	attempts, err := s.Attempts(ctx, target)
	if err != nil {
		return false, err
	}
	if attempts >= s.maxAttempts {
		log.Printf("OTP max attempts exceeded | Target=%s | Attempts=%d", target, attempts)
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(HashCode(code)), []byte(stored)) != 1 {
		if _, err := s.cache.Incr(ctx, nsAttempts, target); err != nil {
			return false, err
		}
		log.Printf("OTP mismatch | Target=%s | Attempt=%d", target, attempts+1)
		return false, nil
	}

	if err := s.Delete(ctx, target); err != nil {
		return false, err
	}
	log.Printf("OTP verified | Target=%s", target)
	return true, nil
}

// Delete removes the code and attempts counter in one batch. Deleting an
// absent record is not an error.
func (s *Service) Delete(ctx context.Context, target string) error {
	return s.cache.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cache.Key(nsCode, target))
		pipe.Del(ctx, cache.Key(nsAttempts, target))
		return nil
	})
}
