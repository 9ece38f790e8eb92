package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a JWT bearer without verifying it.
// The dashboard never trusts the claims; it only uses exp to avoid keeping
// a session around longer than its bearer.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// expiredTTL is how long a record whose bearer has already expired is kept.
const expiredTTL = time.Second

// recordTTL is the configured TTL, shortened to the bearer's remaining
// lifetime when that is known.
func recordTTL(token string, ttl time.Duration, now time.Time) time.Duration {
	exp, ok := TokenExpiry(token)
	if !ok {
		return ttl
	}
	remaining := exp.Sub(now)
	if remaining <= 0 {
		return expiredTTL
	}
	if ttl <= 0 || remaining < ttl {
		return remaining
	}
	return ttl
}
