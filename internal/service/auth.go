package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
)

const tokenTTL = 24 * time.Hour

// RegisterInput carries the fields of a user registration request
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a staff user account. Only administrators may create
// users; the first administrator comes from BootstrapAdmin.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !CanAdminister(actor.Role) {
		return nil, fmt.Errorf("%w: role %s may not create users", ErrForbidden, actor.Role)
	}
	return s.createUser(ctx, input)
}

func (s *Service) createUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" {
		return nil, validationf("username is required")
	}
	if len(input.Password) < 6 {
		return nil, validationf("password must be at least 6 characters")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, validationf("invalid email address")
	}
	if input.Role == "" {
		input.Role = models.RoleAgent
	}
	switch input.Role {
	case models.RoleAdministrateur, models.RoleGestionnaire, models.RoleAgent:
	default:
		return nil, validationf("unknown role %q", input.Role)
	}

	if _, err := s.repo.FindUserByUsername(ctx, input.Username); err == nil {
		return nil, validationf("username %q already taken", input.Username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{"username": user.Username, "role": user.Role}).Info("user registered")
	return user, nil
}

// Login verifies credentials and issues a signed JWT
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.WithField("username", user.Username).Info("user logged in")
	return token, user, nil
}

// BootstrapAdmin creates the initial administrator account from configuration
// when no user with that username exists yet. A blank ADMIN_USERNAME disables
// bootstrapping.
func (s *Service) BootstrapAdmin(ctx context.Context) error {
	if s.config.AdminUser == "" {
		return nil
	}
	if _, err := s.repo.FindUserByUsername(ctx, s.config.AdminUser); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if s.config.AdminPass == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required to bootstrap the admin user")
	}

	_, err := s.createUser(ctx, RegisterInput{
		Username: s.config.AdminUser,
		Email:    s.config.AdminEmail,
		Password: s.config.AdminPass,
		Role:     models.RoleAdministrateur,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}
	s.log.WithField("username", s.config.AdminUser).Info("bootstrapped administrator account")
	return nil
}
