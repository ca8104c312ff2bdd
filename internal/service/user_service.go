package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse carries the issued tokens plus the profile fields the
// frontend needs for role-based state.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
	Role         string `json:"role"`
}

// UserResponse returns a user without exposing sensitive data
type UserResponse struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	EditableCategories []string  `json:"editable_categories"`
	CreatedAt          string    `json:"created_at"`
}

// UserService defines the business logic for accounts and sessions
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	BootstrapDefaultUsers(ctx context.Context) (created bool, err error)
}

type userService struct {
	repo           repository.UserRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	jwtSecret      []byte
	allowBootstrap bool
}

// NewUserService returns a new instance of UserService. allowBootstrap
// gates the default-users setup endpoint; it must be false in
// production deployments.
func NewUserService(
	repo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	jwtSecret []byte,
	allowBootstrap bool,
) UserService {
	return &userService{
		repo:           repo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		jwtSecret:      jwtSecret,
		allowBootstrap: allowBootstrap,
	}
}

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

func mapUserToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		Role:               user.Role,
		EditableCategories: model.EditableCategories(user.Role),
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
	}
}

// Register creates a new account with the default SALES role and logs
// it in immediately.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     model.RoleSales,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{"username": user.Username, "role": user.Role})
		audit := model.AuditLog{
			UserID:     &user.ID,
			Action:     model.ActionRegisterUser,
			EntityID:   user.ID.String(),
			EntityName: user.Username,
			Details:    string(details),
		}
		return s.auditRepo.Create(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*AuthResponse, error) {
	stored, err := s.repo.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, req.RefreshToken)
		return nil, errors.New("refresh token expired")
	}

	user, err := s.repo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, errors.New("user not found")
	}

	// Rotate: the old token is single-use
	if err := s.repo.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return mapUserToResponse(user), nil
}

// BootstrapDefaultUsers seeds the admin/finance/sales accounts once.
// It is a no-op when any user already exists and refuses to run when
// bootstrap is disabled. Setup-only; the passwords are fixed dev
// values and the route is unauthenticated.
func (s *userService) BootstrapDefaultUsers(ctx context.Context) (bool, error) {
	if !s.allowBootstrap {
		return false, ErrSetupDisabled
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	defaults := []struct {
		username, email, password, role string
	}{
		{"admin", "admin@app.com", "adminpass", model.RoleAdmin},
		{"finance", "finance@app.com", "financepass", model.RoleFinance},
		{"salesrep", "sales@app.com", "salespass", model.RoleSales},
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, d := range defaults {
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
			if hashErr != nil {
				return errors.New("failed to hash password")
			}
			user := &model.User{
				Username: d.username,
				Email:    d.email,
				Password: string(hashed),
				Role:     d.role,
			}
			if createErr := s.repo.Create(txCtx, user); createErr != nil {
				return fmt.Errorf("failed to create default user %s: %w", d.username, createErr)
			}
		}

		audit := model.AuditLog{
			Action:  model.ActionBootstrapUsers,
			Details: `{"users":["admin","finance","salesrep"]}`,
		}
		return s.auditRepo.Create(txCtx, &audit)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// issueTokens generates a signed access token plus a persisted,
// rotating refresh token for the user.
func (s *userService) issueTokens(ctx context.Context, user *model.User) (*AuthResponse, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &AuthResponse{
		Token:        tokenString,
		RefreshToken: refresh.Token,
		Username:     user.Username,
		Role:         user.Role,
	}, nil
}
