package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "blacklist:"

// RevocationList remembers logged-out session ids until their tokens expire.
// A nil client makes every call a no-op.
type RevocationList struct {
	client *redis.Client
	now    func() time.Time
}

// NewRevocationList returns a list backed by client.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client, now: time.Now}
}

// Enabled reports whether revocations are stored anywhere.
func (r *RevocationList) Enabled() bool {
	return r != nil && r.client != nil
}

// Revoke marks jti as revoked until the token's own expiry.
func (r *RevocationList) Revoke(ctx context.Context, jti string, until time.Time) error {
	if !r.Enabled() || jti == "" {
		return nil
	}
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !r.Enabled() || jti == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
