package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the access-token payload: the full identity context the REST
// layer and the realtime gateway consume.
type Claims struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	Plan      string `json:"plan"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// RefreshClaims binds a refresh token to the device it was issued for.
type RefreshClaims struct {
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Both token kinds are signed with the same secret, so the type claim is
// what keeps a refresh token from passing as a bearer token and vice versa.
const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

func GenerateToken(userID, accountID, role, plan string, expiration time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		AccountID: accountID,
		Role:      role,
		Plan:      plan,
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GenerateRefreshToken(userID, deviceID string, expiration time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		UserID:    userID,
		DeviceID:  deviceID,
		TokenType: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique jti so back-to-back rotations never mint the same
			// token twice within one clock second.
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != typeAccess {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

func ValidateRefreshToken(tokenString, secret string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid || claims.TokenType != typeRefresh {
		return nil, fmt.Errorf("invalid refresh token")
	}

	return claims, nil
}
