package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidJWTToken = errors.New("JWT token is invalid")
	ErrExpiredJWTToken = errors.New("JWT token is expired")
)

const (
	defaultJWTDuration = 60 * time.Minute
	tokenIssuer        = "accounting"
)

type JWTManagerInterface interface {
	GenerateAccessJWT(userID string) (string, error)
	ValidateAccessToken(tokenString string) (string, error)
}

// accessClaims carries the user id both as user_id and as the subject.
type accessClaims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

type JWTManager struct {
	secret   []byte
	duration time.Duration
}

// NewJWTManager signs access tokens with HS256. A non-positive duration falls
// back to one hour.
func NewJWTManager(secret string, duration time.Duration) *JWTManager {
	if duration <= 0 {
		duration = defaultJWTDuration
	}
	return &JWTManager{
		secret:   []byte(secret),
		duration: duration,
	}
}

func (j *JWTManager) GenerateAccessJWT(userID string) (string, error) {
	now := time.Now()
	claims := &accessClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(j.duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})

	var validationErr *jwt.ValidationError
	switch {
	case errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0:
		return "", ErrExpiredJWTToken
	case err != nil:
		return "", ErrInvalidJWTToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.UserID == "" || !claims.VerifyIssuer(tokenIssuer, true) {
		return "", ErrInvalidJWTToken
	}

	return claims.UserID, nil
}
