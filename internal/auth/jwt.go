package auth

import (
	"metastor/internal/models"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultSessionTTL = 1 * time.Hour

type AppClaims struct {
	AccountID int64  `json:"account_id"`
	PubKey    string `json:"pubKey"`
	jwt.RegisteredClaims
}

// Session is the decoded view of a bearer token.
type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"accountId"`
	PubKey    string    `json:"pubKey"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func GenerateJWT(account *models.Account, secret string, ttl time.Duration, now time.Time) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	expiresAt := now.Add(ttl)

	claims := &AppClaims{
		AccountID: account.ID,
		PubKey:    account.PubKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.PubKey,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "metastor",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     tokenString,
		AccountID: account.ID,
		PubKey:    account.PubKey,
		IssuedAt:  now.Truncate(time.Second),
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

func VerifyJWT(tokenString, secret string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
