package token

import (
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
)

const testKey = "token-test-secret-at-least-32-chars!!"

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// ---- sessions ----

func TestSessions_RoundTrip(t *testing.T) {
	s := NewSessions([]byte(testKey), time.Hour)

	raw, issued, err := s.Issue("user-1")
	require.NoError(t, err)

	got, err := s.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, issued.ID, got.ID)
	assert.NotEmpty(t, got.ID)
	assert.WithinDuration(t, issued.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestSessions_EachTokenHasOwnID(t *testing.T) {
	s := NewSessions([]byte(testKey), time.Hour)
	_, a, _ := s.Issue("user-1")
	_, b, _ := s.Issue("user-1")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSessions_Expired(t *testing.T) {
	s := NewSessions([]byte(testKey), time.Hour)
	s.now = fixedClock(time.Now().Add(-2 * time.Hour))
	raw, _, err := s.Issue("user-1")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(raw)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired))
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestSessions_WrongKey(t *testing.T) {
	raw, _, err := NewSessions([]byte("another-secret-that-is-32-chars-long"), time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewSessions([]byte(testKey), time.Hour).Verify(raw)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestSessions_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ID:        "jti",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testKey))
	require.NoError(t, err)

	_, err = NewSessions([]byte(testKey), time.Hour).Verify(raw)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestSessions_RequiresSubjectIDAndExpiry(t *testing.T) {
	cases := map[string]jwt.RegisteredClaims{
		"no subject": {ID: "jti", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		"no id":      {Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		"no expiry":  {Subject: "user-1", ID: "jti"},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
			require.NoError(t, err)

			_, err = NewSessions([]byte(testKey), time.Hour).Verify(raw)
			assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
		})
	}
}

func TestSessions_Garbage(t *testing.T) {
	_, err := NewSessions([]byte(testKey), time.Hour).Verify("not.a.jwt")
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestClaims_Remaining(t *testing.T) {
	now := time.Now()
	c := Claims{ExpiresAt: now.Add(10 * time.Minute)}
	assert.Equal(t, 10*time.Minute, c.Remaining(now))
}

// ---- resets ----

func TestResets_Generate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewResets([]byte("pepper"), 0)
	r.now = fixedClock(now)

	plain, hash, expiresAt, err := r.Generate()
	require.NoError(t, err)

	assert.Len(t, plain, 40)
	assert.Equal(t, strings.ToLower(plain), plain)
	assert.Equal(t, r.Hash(plain), hash)
	assert.NotEqual(t, plain, hash)
	assert.Equal(t, now.Add(30*time.Minute), expiresAt)
}

func TestResets_HashDependsOnPepper(t *testing.T) {
	a := NewResets([]byte("pepper-a"), time.Minute)
	b := NewResets([]byte("pepper-b"), time.Minute)
	assert.NotEqual(t, a.Hash("same"), b.Hash("same"))
	assert.Equal(t, a.Hash("same"), a.Hash("same"))
}

func TestResets_TokensDiffer(t *testing.T) {
	r := NewResets([]byte("pepper"), time.Minute)
	a, _, _, _ := r.Generate()
	b, _, _, _ := r.Generate()
	assert.NotEqual(t, a, b)
}
