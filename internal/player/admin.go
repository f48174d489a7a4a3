package player

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const adminPasswordKey = "admin:password"

// AdminCredentials guards the admin endpoints with one shared password.
type AdminCredentials interface {
	Verify(ctx context.Context, password string) (bool, error)
	Update(ctx context.Context, password string) error
}

// RedisAdminCredentials checks against a bcrypt hash stored in Redis once a
// password has been set through Update. Until then it compares against the
// configured fallback secret.
type RedisAdminCredentials struct {
	rdb      *redis.Client
	fallback string
	cost     int
}

func NewRedisAdminCredentials(rdb *redis.Client, fallback string) *RedisAdminCredentials {
	return &RedisAdminCredentials{rdb: rdb, fallback: fallback, cost: bcrypt.DefaultCost}
}

func (c *RedisAdminCredentials) Verify(ctx context.Context, password string) (bool, error) {
	hash, err := c.rdb.Get(ctx, adminPasswordKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return constantTimeEqual(password, c.fallback), nil
		}
		return false, fmt.Errorf("load admin password: %w", err)
	}

	err = bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("compare admin password: %w", err)
	}
	return true, nil
}

func (c *RedisAdminCredentials) Update(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := c.rdb.Set(ctx, adminPasswordKey, hash, 0).Err(); err != nil {
		return fmt.Errorf("store admin password: %w", err)
	}
	return nil
}

// constantTimeEqual reports whether a == b. An empty secret never matches.
func constantTimeEqual(a, b string) bool {
	if b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
