package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// loginLimitPrefix is the Redis key prefix for login attempt counters.
	loginLimitPrefix = "loginlimit:"
	// loginLimitWindow is the fixed counting window per client IP.
	loginLimitWindow = 15 * time.Minute
)

// AllowLogin counts a login attempt for the client IP and reports whether it
// is still within the allowed budget for the window. The IP is hashed before
// it becomes a key, so raw addresses never land in Redis.
//
// Fails open: when Redis is unreachable a legitimate admin can still log in;
// the credential check itself remains the real barrier.
func (s *RedisStore) AllowLogin(ctx context.Context, ip string, maxAttempts int) bool {
	key := loginLimitPrefix + hashIP(ip)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		_ = s.client.Expire(ctx, key, loginLimitWindow).Err()
	}

	return count <= int64(maxAttempts)
}

// ResetLogin clears the attempt counter after a successful authentication.
func (s *RedisStore) ResetLogin(ctx context.Context, ip string) {
	_ = s.client.Del(ctx, loginLimitPrefix+hashIP(ip)).Err()
}

// hashIP hashes an IP address for use as a privacy-safe rate limit key.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:16])
}
