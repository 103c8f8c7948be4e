package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/niklvrr/mentorq/internal/domain"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims профиль пользователя внутри токена, роли берутся из LCS в момент выдачи
type Claims struct {
	jwt.RegisteredClaims
	Type  TokenType    `json:"typ"`
	Roles domain.Roles `json:"role"`
}

func (c *Claims) Profile() domain.Profile {
	return domain.Profile{
		Email: c.Subject,
		Roles: c.Roles,
	}
}

type TokenPair struct {
	Access  string
	Refresh string
}

// TokenProvider выдает и проверяет HS256 токены
type TokenProvider struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenProvider(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (p *TokenProvider) IssuePair(profile domain.Profile) (*TokenPair, error) {
	access, err := p.issue(profile, TokenAccess, p.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := p.issue(profile, TokenRefresh, p.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Validate разбирает токен и проверяет подпись, срок, издателя и тип
func (p *TokenProvider) Validate(token string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (p *TokenProvider) issue(profile domain.Profile, typ TokenType, ttl time.Duration) (string, error) {
	now := p.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   profile.Email,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type:  typ,
		Roles: profile.Roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
