package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

type Plan string

const (
	PlanBasic Plan = "basic"
	PlanUltra Plan = "ultra"
)

type User struct {
	ID           string     `json:"id"`
	AccountID    string     `json:"account_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	// PINHash is set only for cashiers provisioned with a register PIN.
	PINHash     string     `json:"-"`
	Role        Role       `json:"role"`
	Plan        Plan       `json:"plan"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Identity is the decoded bearer-token context consumed by the REST layer and
// the realtime gateway. Sync and realtime never touch session storage.
type Identity struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
	Role      Role   `json:"role"`
	Plan      Plan   `json:"plan"`
}

// SignupRequest opens a new account. The plan decides the role: an ultra
// signup becomes the account admin, a basic signup is a standalone cashier.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Plan     Plan   `json:"plan" validate:"omitempty,oneof=basic ultra"`
	DeviceID string `json:"device_id" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	DeviceID string `json:"device_id" validate:"required"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	DeviceID     string `json:"device_id" validate:"required"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LogoutRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
}

// PinLoginRequest is the register fast path: a cashier authenticates with
// their email and 4-digit PIN instead of the full password.
type PinLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	PIN      string `json:"pin" validate:"required,len=4,numeric"`
	DeviceID string `json:"device_id" validate:"required"`
}

// CreateUserRequest provisions a cashier on the caller's account. The new
// user inherits the account and plan of the admin creating them.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	PIN      string `json:"pin" validate:"omitempty,len=4,numeric"`
}
