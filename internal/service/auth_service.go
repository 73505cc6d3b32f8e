package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService exchanges credentials for bearer tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies email and password. Unknown emails and wrong passwords fail
// the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if user.PasswordHash == "" || auth.ComparePassword(user.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokens.GenerateToken(*user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
