package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore holds one-time codes keyed by phone number. Codes are consumed on
// successful verification.
type OTPStore interface {
	Set(ctx context.Context, phone, code string, ttl time.Duration) error
	Consume(ctx context.Context, phone, code string) error
}

// RedisOTPStore keeps codes in redis with a TTL.
type RedisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore wraps a redis client.
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func otpKey(phone string) string {
	return "otp:" + phone
}

// Set stores the code, replacing any outstanding one for the phone.
func (s *RedisOTPStore) Set(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpKey(phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("auth: store otp: %w", err)
	}
	return nil
}

// Consume checks the code and deletes it on match. A wrong code leaves the
// stored one in place until it expires.
func (s *RedisOTPStore) Consume(ctx context.Context, phone, code string) error {
	stored, err := s.client.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidOTP
	}
	if err != nil {
		return fmt.Errorf("auth: read otp: %w", err)
	}
	if stored != code || code == "" {
		return ErrInvalidOTP
	}
	if err := s.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("auth: consume otp: %w", err)
	}
	return nil
}

// GenerateOTP returns a 6-digit code from crypto/rand.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("auth: generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

var _ OTPStore = (*RedisOTPStore)(nil)
