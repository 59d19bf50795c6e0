package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPendingSignupStore keeps pending signups in Redis with a TTL, so
// in-flight signups survive a process restart. Selected when Redis is
// configured; the in-memory store is the default otherwise.
type RedisPendingSignupStore struct {
	client *redis.Client
}

func NewRedisPendingSignupStore(client *redis.Client) *RedisPendingSignupStore {
	return &RedisPendingSignupStore{client: client}
}

func pendingSignupKey(email string) string {
	return fmt.Sprintf("pending_signup:%s", email)
}

// consumeScript deletes the entry only when the submitted code matches, in a
// single atomic step. A wrong code leaves the entry in place; expiry is
// enforced by the key TTL.
var consumeScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code or code ~= ARGV[1] then
  return nil
end
local entry = redis.call('HGETALL', KEYS[1])
redis.call('DEL', KEYS[1])
return entry
`)

// Put stores a pending signup hash under the email key, replacing any prior
// entry, with a TTL matching the entry expiry.
func (s *RedisPendingSignupStore) Put(ctx context.Context, email string, entry *PendingSignup) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pending signup expiry is in the past")
	}

	key := pendingSignupKey(email)

	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"code":          entry.Code,
		"name":          entry.Name,
		"date_of_birth": entry.DateOfBirth.Format(time.RFC3339),
		"expires_at":    entry.ExpiresAt.Format(time.RFC3339),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store pending signup: %w", err)
	}

	return nil
}

// Consume runs the atomic check-and-delete script and reconstructs the entry.
func (s *RedisPendingSignupStore) Consume(ctx context.Context, email, code string) (*PendingSignup, error) {
	result, err := consumeScript.Run(ctx, s.client, []string{pendingSignupKey(email)}, code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOTPInvalid
		}
		return nil, fmt.Errorf("failed to consume pending signup: %w", err)
	}

	fields, ok := result.([]interface{})
	if !ok || len(fields) == 0 {
		return nil, ErrOTPInvalid
	}

	entry := &PendingSignup{Email: email, Code: code}
	for i := 0; i+1 < len(fields); i += 2 {
		key, _ := fields[i].(string)
		value, _ := fields[i+1].(string)
		switch key {
		case "name":
			entry.Name = value
		case "date_of_birth":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				entry.DateOfBirth = t
			}
		case "expires_at":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				entry.ExpiresAt = t
			}
		}
	}

	return entry, nil
}
