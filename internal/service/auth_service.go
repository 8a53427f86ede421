package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"
	"pos-sync-server/pkg/hash"
	"pos-sync-server/pkg/jwt"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo          repository.UserRepository
	sessionRepo       repository.SessionRepository
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
	jwtExp, refreshExp time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		sessionRepo:       sessionRepo,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
	}
}

// Signup opens a fresh account. The chosen plan decides the role: an ultra
// signup runs the account and can provision cashiers, a basic signup is a
// single-register cashier.
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(req.Email)

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := hash.Password(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	plan := req.Plan
	if plan == "" {
		plan = domain.PlanBasic
	}
	role := domain.RoleCashier
	if plan == domain.PlanUltra {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		AccountID:    uuid.New().String(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Plan:         plan,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(ctx, user, req.DeviceID)
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := hash.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.StampLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to stamp login: %w", err)
	}

	return s.issueTokens(ctx, user, req.DeviceID)
}

// PinLogin authenticates a cashier by email and register PIN. Wrong email,
// missing PIN and wrong PIN are indistinguishable to the caller.
func (s *AuthService) PinLogin(ctx context.Context, req *domain.PinLoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, ErrInvalidPIN
	}

	if user.PINHash == "" {
		return nil, ErrInvalidPIN
	}
	if err := hash.Compare(user.PINHash, req.PIN); err != nil {
		return nil, ErrInvalidPIN
	}

	if err := s.userRepo.StampLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to stamp login: %w", err)
	}

	return s.issueTokens(ctx, user, req.DeviceID)
}

// CreateCashier provisions a cashier on the caller's account. The new user
// inherits the account id and plan of the admin creating them.
func (s *AuthService) CreateCashier(ctx context.Context, actor *domain.Identity, req *domain.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(req.Email)

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := hash.Password(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	pinHash := ""
	if req.PIN != "" {
		pinHash, err = hash.PIN(req.PIN)
		if err != nil {
			return nil, fmt.Errorf("failed to hash pin: %w", err)
		}
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		AccountID:    actor.AccountID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		PINHash:      pinHash,
		Role:         domain.RoleCashier,
		Plan:         actor.Plan,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// ListUsers returns every user on the account.
func (s *AuthService) ListUsers(ctx context.Context, accountID string) ([]*domain.User, error) {
	return s.userRepo.ListByAccount(ctx, accountID)
}

// Refresh rotates the session for (user, device). The presented refresh token
// must embed the same device id the caller claims, or the rotation is
// rejected outright.
func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.RefreshResponse, error) {
	claims, err := jwt.ValidateRefreshToken(req.RefreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	if claims.DeviceID != req.DeviceID {
		return nil, ErrInvalidRefresh
	}

	// The token must also match the one active session for this device:
	// a rotated-out token is dead even before its JWT expiry.
	session, err := s.sessionRepo.FindActive(ctx, claims.UserID, req.DeviceID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if !session.Active(time.Now()) || session.RefreshTokenHash != hash.Token(req.RefreshToken) {
		return nil, ErrInvalidRefresh
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	resp, err := s.issueTokens(ctx, user, req.DeviceID)
	if err != nil {
		return nil, err
	}

	return &domain.RefreshResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID, deviceID string) error {
	session, err := s.sessionRepo.FindActive(ctx, userID, deviceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.sessionRepo.Revoke(ctx, session.ID)
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthService) ValidateToken(token string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// issueTokens mints the token pair and rotates the (user, device) session:
// the previous active session, if any, is revoked before the new one is
// created, so at most one refresh token per device is ever valid.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User, deviceID string) (*domain.AuthResponse, error) {
	accessToken, err := jwt.GenerateToken(user.ID, user.AccountID, string(user.Role), string(user.Plan), s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(user.ID, deviceID, s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	existing, err := s.sessionRepo.FindActive(ctx, user.ID, deviceID)
	if err == nil {
		if err := s.sessionRepo.Revoke(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke prior session: %w", err)
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	session := &domain.Session{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		DeviceID:         deviceID,
		RefreshTokenHash: hash.Token(refreshToken),
		ExpiresAt:        time.Now().Add(s.refreshExpiration),
		Version:          1,
		CreatedAt:        time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &domain.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtExpiration.Seconds()),
	}, nil
}
