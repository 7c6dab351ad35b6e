package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hackreg-backend/errs"
	"hackreg-backend/jwt"
)

const claimsKey = "claims"

// Auth validates the Bearer access token and stashes its claims into the
// request context. Team membership is never taken from the token, every
// team operation re-derives it from the store.
func Auth(key []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abort(c, errs.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, errs.ErrUnauthorized)
			return
		}

		claims, err := jwt.ValidateAccessToken(parts[1], key)
		if err != nil {
			if err == jwt.ErrExpired {
				abort(c, errs.ErrTokenExpired)
				return
			}

			abort(c, errs.ErrJWT)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*jwt.AccessClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}

	claims, ok := v.(*jwt.AccessClaims)
	return claims, ok
}
