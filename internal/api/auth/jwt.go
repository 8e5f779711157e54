package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("access token invalid")

// AccessTokenTTL bounds how long an issued session token stays valid.
const AccessTokenTTL = 24 * time.Hour

type SessionClaims struct {
	TelegramID int64 `json:"telegramId"`
	UserID     int64 `json:"userId"`
	jwt.RegisteredClaims
}

// GenerateAccessToken mints the signed bearer token handed to the
// Mini-App after a successful identity handoff.
func GenerateAccessToken(telegramID, userID int64, secret []byte) (string, error) {
	claims := SessionClaims{
		TelegramID: telegramID,
		UserID:     userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateAccessToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
