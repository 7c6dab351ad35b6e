package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/log"
)

var (
	ErrExpired = errors.New("token expired")
)

const issuer = "hackreg"

type RefreshClaims struct {
	Email string `json:"email"`
	*jwt.StandardClaims
}

type AccessClaims struct {
	Email string `json:"email"`
	*jwt.StandardClaims
}

func NewRefreshToken(user *entity.User, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &RefreshClaims{
		Email: user.Email,
		StandardClaims: &jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour * 24 * 30 * 6).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    issuer,
		},
	})

	ss, err := token.SignedString(key)
	if err != nil {
		log.Logger.Error("signing failure", zap.Error(err))
		return "", err
	}

	return ss, nil
}

func NewAccessToken(user *entity.User, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &AccessClaims{
		Email: user.Email,
		StandardClaims: &jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour * 24).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    issuer,
		},
	})

	ss, err := token.SignedString(key)
	if err != nil {
		log.Logger.Error("signing failure", zap.Error(err))
		return "", err
	}

	return ss, nil
}

func ValidateRefreshToken(token string, key []byte) (*RefreshClaims, error) {
	t, err := jwt.ParseWithClaims(token, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}

		log.Logger.Debug("parse failure", zap.Error(err))
		return nil, err
	}

	c := t.Claims.(*RefreshClaims)
	if c.ExpiresAt < time.Now().Unix() {
		return nil, ErrExpired
	}

	return c, nil
}

func ValidateAccessToken(token string, key []byte) (*AccessClaims, error) {
	t, err := jwt.ParseWithClaims(token, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}

		log.Logger.Debug("parse failure", zap.Error(err))
		return nil, err
	}

	c := t.Claims.(*AccessClaims)
	if c.ExpiresAt < time.Now().Unix() {
		return nil, ErrExpired
	}

	return c, nil
}
