package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/knowx/knowx-back/internal/logger"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingUser  = errors.New("token carries no user id")
	// Initialized from the environment, or explicitly via InitJWTKey once config is loaded
	jwtKey = []byte(os.Getenv("JWT_SECRET"))
	log    = logger.New("auth")
)

// TokenTTL matches the lifetime of tokens issued by the account service
const TokenTTL = 24 * time.Hour

// InitJWTKey sets the shared HMAC secret
func InitJWTKey(key []byte) {
	jwtKey = key
}

// JWTClaims are the claims put in the token at login
type JWTClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token the same way the account service does.
// Used by tests and local tooling; the messaging service only verifies tokens.
func GenerateToken(userID int64, email string) (string, time.Time, error) {
	if userID <= 0 {
		return "", time.Time{}, ErrMissingUser
	}

	now := time.Now()
	expirationTime := now.Add(TokenTTL)

	claims := &JWTClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)

	return tokenString, expirationTime, err
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*JWTClaims, error) {
	if tokenString == "" {
		log.Warn("Validating empty token")
		return nil, ErrInvalidToken
	}

	claims := &JWTClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Error("Unexpected signing method: %v", token.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	})

	if err != nil {
		log.Debug("Token validation error: %v", err)
		return nil, err
	}

	if !token.Valid {
		log.Warn("Token is invalid")
		return nil, ErrInvalidToken
	}

	log.Debug("Token validated for user: %d", claims.UserID)
	return claims, nil
}

// UserIDFromClaims returns the authenticated user id
func UserIDFromClaims(claims *JWTClaims) (int64, error) {
	if claims == nil {
		return 0, errors.New("claims cannot be nil")
	}
	if claims.UserID <= 0 {
		return 0, ErrMissingUser
	}
	return claims.UserID, nil
}
