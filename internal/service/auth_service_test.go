package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"
	"pos-sync-server/pkg/jwt"
)

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) ListByAccount(ctx context.Context, accountID string) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range m.users {
		if u.AccountID == accountID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockUserRepo) StampLogin(ctx context.Context, id string) error {
	if u, exists := m.users[id]; exists {
		now := time.Now()
		u.LastLoginAt = &now
		return nil
	}
	return repository.ErrNotFound
}

type mockSessionRepo struct {
	sessions map[string]*domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepo) FindActive(ctx context.Context, userID, deviceID string) (*domain.Session, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && s.DeviceID == deviceID && s.RevokedAt == nil {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockSessionRepo) Revoke(ctx context.Context, id string) error {
	if s, exists := m.sessions[id]; exists && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
		s.Version++
		return nil
	}
	return repository.ErrNotFound
}

func (m *mockSessionRepo) activeCount(userID, deviceID string) int {
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.DeviceID == deviceID && s.RevokedAt == nil {
			n++
		}
	}
	return n
}

const testSecret = "auth-service-test-secret-32-chars"

func newAuthFixture() (*mockUserRepo, *mockSessionRepo, *AuthService) {
	userRepo := newMockUserRepo()
	sessionRepo := newMockSessionRepo()
	svc := NewAuthService(userRepo, sessionRepo, testSecret, 15*time.Minute, 24*time.Hour)
	return userRepo, sessionRepo, svc
}

func TestAuthService_Signup(t *testing.T) {
	_, sessionRepo, svc := newAuthFixture()

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Name:     "Owner",
		Email:    "Owner@Example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if resp.User.Email != "owner@example.com" {
		t.Errorf("email not lowercased: %s", resp.User.Email)
	}
	if resp.User.Plan != domain.PlanUltra {
		t.Errorf("plan = %s, want ultra", resp.User.Plan)
	}
	if resp.User.Role != domain.RoleAdmin {
		t.Errorf("role = %s, want admin for an ultra signup", resp.User.Role)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("tokens not issued")
	}
	if sessionRepo.activeCount(resp.User.ID, "register-1") != 1 {
		t.Error("expected one active session after signup")
	}

	_, err = svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanBasic,
		DeviceID: "register-2",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_SignupPlanDerivesRole(t *testing.T) {
	_, _, svc := newAuthFixture()

	basic, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Name:     "Solo",
		Email:    "solo@example.com",
		Password: "password123",
		DeviceID: "register-1",
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if basic.User.Plan != domain.PlanBasic {
		t.Errorf("plan = %s, want basic when omitted", basic.User.Plan)
	}
	if basic.User.Role != domain.RoleCashier {
		t.Errorf("role = %s, want cashier for a basic signup", basic.User.Role)
	}

	ultra, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Name:     "Owner",
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	// The minted access token carries the plan the realtime gateway checks.
	claims, err := jwt.ValidateToken(ultra.AccessToken, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Plan != string(domain.PlanUltra) {
		t.Errorf("token plan = %s, want ultra", claims.Plan)
	}
	if claims.Role != string(domain.RoleAdmin) {
		t.Errorf("token role = %s, want admin", claims.Role)
	}
}

func TestAuthService_CreateCashier(t *testing.T) {
	_, _, svc := newAuthFixture()

	owner, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Name:     "Owner",
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})

	actor := &domain.Identity{
		UserID:    owner.User.ID,
		AccountID: owner.User.AccountID,
		Role:      owner.User.Role,
		Plan:      owner.User.Plan,
	}

	cashier, err := svc.CreateCashier(context.Background(), actor, &domain.CreateUserRequest{
		Name:     "Till One",
		Email:    "Till1@Example.com",
		Password: "password123",
		PIN:      "4321",
	})
	if err != nil {
		t.Fatalf("CreateCashier() error = %v", err)
	}

	if cashier.AccountID != owner.User.AccountID {
		t.Errorf("cashier account = %s, want the owner's %s", cashier.AccountID, owner.User.AccountID)
	}
	if cashier.Plan != domain.PlanUltra {
		t.Errorf("cashier plan = %s, want inherited ultra", cashier.Plan)
	}
	if cashier.Role != domain.RoleCashier {
		t.Errorf("cashier role = %s, want cashier", cashier.Role)
	}
	if cashier.PINHash == "" || cashier.PINHash == "4321" {
		t.Error("pin not stored hashed")
	}

	_, err = svc.CreateCashier(context.Background(), actor, &domain.CreateUserRequest{
		Name:     "Duplicate",
		Email:    "till1@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_ListUsersIsTenantScoped(t *testing.T) {
	_, _, svc := newAuthFixture()

	owner, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Name:     "Owner",
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})
	other, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Name:     "Other",
		Email:    "other@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})

	actor := &domain.Identity{
		UserID:    owner.User.ID,
		AccountID: owner.User.AccountID,
		Role:      owner.User.Role,
		Plan:      owner.User.Plan,
	}
	svc.CreateCashier(context.Background(), actor, &domain.CreateUserRequest{
		Name:     "Till One",
		Email:    "till1@example.com",
		Password: "password123",
	})

	users, err := svc.ListUsers(context.Background(), owner.User.AccountID)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %d, want owner plus cashier", len(users))
	}
	for _, u := range users {
		if u.ID == other.User.ID {
			t.Error("user from another account listed")
		}
	}
}

func TestAuthService_PinLogin(t *testing.T) {
	_, sessionRepo, svc := newAuthFixture()

	owner, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Name:     "Owner",
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})
	actor := &domain.Identity{
		UserID:    owner.User.ID,
		AccountID: owner.User.AccountID,
		Role:      owner.User.Role,
		Plan:      owner.User.Plan,
	}
	cashier, _ := svc.CreateCashier(context.Background(), actor, &domain.CreateUserRequest{
		Name:     "Till One",
		Email:    "till1@example.com",
		Password: "password123",
		PIN:      "4321",
	})

	resp, err := svc.PinLogin(context.Background(), &domain.PinLoginRequest{
		Email:    "Till1@Example.com",
		PIN:      "4321",
		DeviceID: "register-2",
	})
	if err != nil {
		t.Fatalf("PinLogin() error = %v", err)
	}
	if resp.User.ID != cashier.ID {
		t.Errorf("logged in as %s, want %s", resp.User.ID, cashier.ID)
	}
	if sessionRepo.activeCount(cashier.ID, "register-2") != 1 {
		t.Error("expected one active session after pin login")
	}

	_, err = svc.PinLogin(context.Background(), &domain.PinLoginRequest{
		Email:    "till1@example.com",
		PIN:      "0000",
		DeviceID: "register-2",
	})
	if !errors.Is(err, ErrInvalidPIN) {
		t.Errorf("expected ErrInvalidPIN for wrong pin, got %v", err)
	}

	// The owner never got a PIN; password-only users cannot pin-login.
	_, err = svc.PinLogin(context.Background(), &domain.PinLoginRequest{
		Email:    "owner@example.com",
		PIN:      "4321",
		DeviceID: "register-2",
	})
	if !errors.Is(err, ErrInvalidPIN) {
		t.Errorf("expected ErrInvalidPIN for pin-less user, got %v", err)
	}
}

func TestAuthService_LoginRotatesSession(t *testing.T) {
	_, sessionRepo, svc := newAuthFixture()

	signup, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "password123",
		DeviceID: "register-1",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Rotation-on-reuse: exactly one active session per (user, device).
	if n := sessionRepo.activeCount(signup.User.ID, "register-1"); n != 1 {
		t.Errorf("active sessions = %d, want 1", n)
	}
	if len(sessionRepo.sessions) != 2 {
		t.Errorf("total sessions = %d, want 2 (old revoked, new active)", len(sessionRepo.sessions))
	}
	if login.RefreshToken == signup.RefreshToken {
		t.Error("refresh token not rotated")
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	_, _, svc := newAuthFixture()

	svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong-password",
		DeviceID: "register-1",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
		DeviceID: "register-1",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_RefreshDeviceMismatch(t *testing.T) {
	_, _, svc := newAuthFixture()

	signup, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})

	_, err := svc.Refresh(context.Background(), &domain.RefreshRequest{
		RefreshToken: signup.RefreshToken,
		DeviceID:     "another-device",
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("expected ErrInvalidRefresh on device mismatch, got %v", err)
	}

	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{
		RefreshToken: "not-a-token",
		DeviceID:     "register-1",
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("expected ErrInvalidRefresh on garbage token, got %v", err)
	}
}

func TestAuthService_RefreshRotates(t *testing.T) {
	_, sessionRepo, svc := newAuthFixture()

	signup, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})

	resp, err := svc.Refresh(context.Background(), &domain.RefreshRequest{
		RefreshToken: signup.RefreshToken,
		DeviceID:     "register-1",
	})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("rotated tokens missing")
	}
	if n := sessionRepo.activeCount(signup.User.ID, "register-1"); n != 1 {
		t.Errorf("active sessions after refresh = %d, want 1", n)
	}

	// The rotated-out token is dead: replaying it must fail even though
	// its JWT has not expired yet.
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{
		RefreshToken: signup.RefreshToken,
		DeviceID:     "register-1",
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("expected ErrInvalidRefresh on replayed token, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	_, sessionRepo, svc := newAuthFixture()

	signup, _ := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "owner@example.com",
		Password: "password123",
		Plan:     domain.PlanUltra,
		DeviceID: "register-1",
	})

	if err := svc.Logout(context.Background(), signup.User.ID, "register-1"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if n := sessionRepo.activeCount(signup.User.ID, "register-1"); n != 0 {
		t.Errorf("active sessions after logout = %d, want 0", n)
	}

	// Logging out an already-clean device is a no-op, not an error.
	if err := svc.Logout(context.Background(), signup.User.ID, "register-1"); err != nil {
		t.Errorf("repeat Logout() error = %v", err)
	}
}
