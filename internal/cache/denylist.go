package cache

import (
	"context"
	"fmt"
	"time"
)

const denylistPrefix = "auth:denylist:"

// Denylist records revoked session token ids until they would have expired
// anyway.
type Denylist struct {
	c *Client
}

func NewDenylist(c *Client) *Denylist {
	return &Denylist{c: c}
}

// Revoke is the one write that must not be silently dropped: a logout that
// did not stick is reported to the caller.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.c.rdb.Set(ctx, denylistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked fails open: when Redis cannot answer, the token is accepted and
// the failure logged.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) bool {
	revoked, err := d.c.Exists(ctx, denylistPrefix+jti)
	if err != nil {
		d.c.logger.WarnContext(ctx, "denylist lookup failed, accepting token", "error", err)
		return false
	}
	return revoked
}
