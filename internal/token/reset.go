package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	resetTokenBytes = 20
	DefaultResetTTL = 30 * time.Minute
)

// Resets generates reset tokens. Only Hash(plain), an HMAC keyed with the
// configured pepper, is ever persisted.
type Resets struct {
	pepper []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewResets(pepper []byte, ttl time.Duration) *Resets {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &Resets{pepper: pepper, ttl: ttl, now: time.Now}
}

// Generate returns the plaintext for one-time delivery, its hash and the
// expiry to store.
func (r *Resets) Generate() (plain, hash string, expiresAt time.Time, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}
	plain = hex.EncodeToString(b)
	return plain, r.Hash(plain), r.now().Add(r.ttl), nil
}

func (r *Resets) Hash(plain string) string {
	mac := hmac.New(sha256.New, r.pepper)
	mac.Write([]byte(plain))
	return hex.EncodeToString(mac.Sum(nil))
}

func (r *Resets) TTL() time.Duration { return r.ttl }
