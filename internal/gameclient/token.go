package gameclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryMargin is how long before the exp claim a token counts as expiring.
const expiryMargin = 2 * time.Minute

// TokenNearExpiry reports whether a JWT will expire within the margin. The
// signature is not verified; only the server can do that, and the client only
// needs to know when to ask for a fresh token. Tokens that cannot be parsed
// or carry no exp claim count as expiring.
func TokenNearExpiry(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Add(expiryMargin).After(exp.Time)
}
