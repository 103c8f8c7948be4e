package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/lcs"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/dto"
	"github.com/niklvrr/mentorq/internal/infrastructure/repository"
	"github.com/niklvrr/mentorq/internal/security"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	issueTokenError   = errors.New("issue token error")
	refreshTokenError = errors.New("refresh token error")
)

// Интерфейс репозитория
type UserRepository interface {
	SaveCredential(ctx context.Context, d *dto.SaveCredentialDTO) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type TokenProvider interface {
	IssuePair(profile domain.Profile) (*security.TokenPair, error)
	Validate(token string, want security.TokenType) (*security.Claims, error)
}

type AuthService struct {
	gateway IdentityGateway
	users   UserRepository
	tokens  TokenProvider
	log     *zap.Logger
}

func NewAuthService(gateway IdentityGateway, users UserRepository, tokens TokenProvider, log *zap.Logger) *AuthService {
	return &AuthService{
		gateway: gateway,
		users:   users,
		tokens:  tokens,
		log:     log,
	}
}

// Token обменивает токен LCS на пару токенов сервиса
func (s *AuthService) Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error) {
	s.log.Info("token request accepted", zap.String("email", req.Email))

	// Проверяем токен в LCS
	profile, err := s.resolve(ctx, domain.Credential{Email: req.Email, Token: req.LCSToken})
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(profile.Email, req.Email) {
		s.log.Warn("lcs profile email mismatch",
			zap.String("email", req.Email),
			zap.String("profile_email", profile.Email),
		)
		return nil, ErrUnauthenticated
	}

	// Запоминаем токен LCS для обновления сессии и ссылок в slack
	_, err = s.users.SaveCredential(ctx, &dto.SaveCredentialDTO{
		Email:    profile.Email,
		LCSToken: req.LCSToken,
	})
	if err != nil {
		s.log.Error("failed to save credential", zap.Error(err))
		return nil, fmt.Errorf(`%w: %w`, issueTokenError, err)
	}

	pair, err := s.tokens.IssuePair(profile)
	if err != nil {
		return nil, fmt.Errorf(`%w: %w`, issueTokenError, err)
	}

	s.log.Info("tokens issued", zap.String("email", profile.Email))
	// Ответ
	return &response.TokenResponse{Access: pair.Access, Refresh: pair.Refresh}, nil
}

// Refresh перечитывает профиль, роли в LCS могли измениться
func (s *AuthService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error) {
	claims, err := s.tokens.Validate(req.Refresh, security.TokenRefresh)
	if err != nil {
		s.log.Warn("invalid refresh token", zap.Error(err))
		return nil, WrapError(ErrUnauthenticated, err)
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrNoStoredCredential, err)
		}
		return nil, fmt.Errorf(`%w: %w`, refreshTokenError, err)
	}

	profile, err := s.resolve(ctx, domain.Credential{Email: user.Email, Token: user.LCSToken})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(profile)
	if err != nil {
		return nil, fmt.Errorf(`%w: %w`, refreshTokenError, err)
	}

	s.log.Info("tokens refreshed", zap.String("email", profile.Email))
	return &response.TokenResponse{Access: pair.Access, Refresh: pair.Refresh}, nil
}

// Authenticate проверяет access токен и возвращает профиль из него
func (s *AuthService) Authenticate(token string) (domain.Profile, error) {
	claims, err := s.tokens.Validate(token, security.TokenAccess)
	if err != nil {
		return domain.Profile{}, WrapError(ErrUnauthenticated, err)
	}
	return claims.Profile(), nil
}

func (s *AuthService) resolve(ctx context.Context, cred domain.Credential) (domain.Profile, error) {
	profile, err := s.gateway.ResolveProfile(ctx, cred)
	if err == nil {
		return profile, nil
	}

	s.log.Warn("failed to resolve lcs profile",
		zap.String("email", cred.Email),
		zap.Error(err),
	)
	if errors.Is(err, lcs.ErrProfileNotFound) {
		return domain.Profile{}, WrapError(ErrUnauthenticated, err)
	}
	// UpstreamError отдается клиенту как есть
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) || isDomainError(err) {
		return domain.Profile{}, err
	}
	return domain.Profile{}, fmt.Errorf(`%w: %w`, issueTokenError, err)
}
