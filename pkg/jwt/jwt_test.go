package jwt

import (
	"testing"
	"time"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		plan       string
		expiration time.Duration
		secret     string
		wantErr    bool
	}{
		{
			name:       "valid token generation",
			userID:     "user-123",
			plan:       "ultra",
			expiration: 15 * time.Minute,
			secret:     "test-secret-key-32-characters!",
			wantErr:    false,
		},
		{
			name:       "short expiration",
			userID:     "user-456",
			plan:       "basic",
			expiration: 1 * time.Second,
			secret:     "test-secret",
			wantErr:    false,
		},
		{
			name:       "long expiration",
			userID:     "user-789",
			plan:       "basic",
			expiration: 24 * time.Hour,
			secret:     "test-secret",
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, "acc-1", "admin", tt.plan, tt.expiration, tt.secret)

			if tt.wantErr {
				if err == nil {
					t.Error("GenerateToken() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("GenerateToken() error = %v", err)
				return
			}

			if token == "" {
				t.Error("GenerateToken() returned empty token")
			}

			if len(token) < 100 {
				t.Errorf("GenerateToken() token too short, len = %d", len(token))
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	secret := "validation-secret-key-32-chars"

	validToken, _ := GenerateToken("test-user-id", "acc-9", "cashier", "ultra", 1*time.Hour, secret)
	expiredToken, _ := GenerateToken("test-user-id", "acc-9", "cashier", "ultra", -1*time.Hour, secret)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr bool
	}{
		{name: "valid token", token: validToken, secret: secret, wantErr: false},
		{name: "expired token", token: expiredToken, secret: secret, wantErr: true},
		{name: "wrong secret", token: validToken, secret: "wrong-secret", wantErr: true},
		{name: "invalid token format", token: "invalid.token.format", secret: secret, wantErr: true},
		{name: "empty token", token: "", secret: secret, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr {
				if err == nil {
					t.Error("ValidateToken() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("ValidateToken() error = %v", err)
				return
			}

			if claims.UserID != "test-user-id" {
				t.Errorf("ValidateToken() UserID = %s, want test-user-id", claims.UserID)
			}
			if claims.AccountID != "acc-9" {
				t.Errorf("ValidateToken() AccountID = %s, want acc-9", claims.AccountID)
			}
			if claims.Plan != "ultra" {
				t.Errorf("ValidateToken() Plan = %s, want ultra", claims.Plan)
			}
		})
	}
}

func TestTokenKindsNotInterchangeable(t *testing.T) {
	secret := "shared-secret-key-32-characters!"

	accessToken, err := GenerateToken("user-1", "acc-1", "admin", "ultra", 1*time.Hour, secret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	refreshToken, err := GenerateRefreshToken("user-1", "device-1", 1*time.Hour, secret)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	// Same secret, same algorithm; only the type claim tells them apart.
	if _, err := ValidateToken(refreshToken, secret); err == nil {
		t.Error("ValidateToken() accepted a refresh token as a bearer token")
	}
	if _, err := ValidateRefreshToken(accessToken, secret); err == nil {
		t.Error("ValidateRefreshToken() accepted an access token")
	}
}

func TestRefreshTokenDeviceBinding(t *testing.T) {
	secret := "refresh-secret-key"

	token, err := GenerateRefreshToken("user-refresh-test", "device-abc", 7*24*time.Hour, secret)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := ValidateRefreshToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}

	if claims.DeviceID != "device-abc" {
		t.Errorf("DeviceID = %s, want device-abc", claims.DeviceID)
	}
	if claims.UserID != "user-refresh-test" {
		t.Errorf("UserID = %s, want user-refresh-test", claims.UserID)
	}

	if _, err := ValidateRefreshToken(token, "other-secret"); err == nil {
		t.Error("ValidateRefreshToken() accepted token signed with another secret")
	}
}
