package service

import (
	"context"
	"log/slog"

	"github.com/igokul95/splitzer/internal/auth"
	"github.com/igokul95/splitzer/internal/models"
)

// AuthService wires the authenticator and token manager together. It is the
// only place that knows about credentials; everything downstream trusts the
// user ID the token carries.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, tokens *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{authenticator: authenticator, tokens: tokens, logger: logger}
}

// Session is a signed-in user and their bearer token.
type Session struct {
	User  *models.User
	Token string
}

// Register creates (or claims) an account and returns a session.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// Login authenticates a user and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// ValidateToken resolves a bearer token to the user ID it was issued for.
func (s *AuthService) ValidateToken(token string) (string, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
