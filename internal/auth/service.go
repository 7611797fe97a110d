package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/asset-management/internal/scope"
)

// DirectoryUser is the directory row shape this package needs. The user
// package adapts its repository to UserDirectory, which keeps auth a leaf
// of the domain import graph.
type DirectoryUser struct {
	ID         int64
	Username   string
	Role       string
	BranchCode string
}

type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*DirectoryUser, error)
	GetByID(ctx context.Context, id int64) (*DirectoryUser, error)
}

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (AuthTokens, error)
	ResolveAccessToken(ctx context.Context, tokenString string) (*User, error)
}

type Service struct {
	directory UserDirectory
	tokens    TokenGeneratorAPI
	logger    *slog.Logger
}

func NewService(directory UserDirectory, tokens TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{directory: directory, tokens: tokens, logger: logger}
}

// Login looks the username up in the directory and issues a token pair. The
// role string is validated against the closed role set so a tampered
// directory row cannot smuggle an unknown role into a session.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.directory.GetByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Warn("login failed: unknown username", "username", dto.Username)
		return nil, ErrUserNotFound
	}

	if _, err := scope.ParseRole(u.Role); err != nil {
		s.logger.Error("login rejected: directory row carries unknown role",
			"username", u.Username, "role", u.Role)
		return nil, err
	}

	actor := &User{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		BranchCode: u.BranchCode,
	}

	tokens, err := s.issueTokens(actor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return &LoginResponse{User: actor, Tokens: tokens}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	// Re-read the directory so role or branch changes take effect on refresh.
	u, err := s.directory.GetByID(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrUserNotFound
	}

	return s.issueTokens(&User{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		BranchCode: u.BranchCode,
	})
}

// ResolveAccessToken validates the bearer token and returns the actor with
// role and branch refreshed from the directory.
func (s *Service) ResolveAccessToken(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	u, err := s.directory.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return &User{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		BranchCode: u.BranchCode,
	}, nil
}

func (s *Service) issueTokens(actor *User) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(actor)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(actor)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
