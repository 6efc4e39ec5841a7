package toolkit

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
)

// parseClaims decodes the payload of an ID token without checking its
// signature. The token came straight from the platform over TLS and is only
// used to read profile metadata.
func parseClaims(idToken string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

func claimBool(claims jwt.MapClaims, key string) bool {
	v, _ := claims[key].(bool)
	return v
}

func claimTime(claims jwt.MapClaims, key string) time.Time {
	switch v := claims[key].(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case int64:
		return time.Unix(v, 0)
	}
	return time.Time{}
}
