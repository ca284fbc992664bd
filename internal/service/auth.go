// Package service contains application services for identity, items and settings.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/stockkeeper/internal/crypto"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/limiter"
	"github.com/and161185/stockkeeper/internal/model"
	"github.com/and161185/stockkeeper/internal/repository"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// AuthService defines account and session operations.
type AuthService interface {
	// SignUp creates an account and returns its ID.
	SignUp(ctx context.Context, email, password string) (userID string, err error)
	// SignIn applies rate limiting per (email, peer) and issues an access token.
	SignIn(ctx context.Context, email, password, peer string) (model.Tokens, model.User, error)
	// WhoAmI loads the account behind a verified token subject.
	WhoAmI(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

// Claims is the JWT payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: email address is badly formatted", errs.ErrValidation)
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, MinPasswordLen)
	}
	return nil
}

// SignUp hashes the password with a fresh salt and stores the account.
func (s *AuthServiceImpl) SignUp(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	hash, salt, err := crypto.NewCredentials(password)
	if err != nil {
		return "", err
	}
	u := &model.User{ID: uid, Email: email, PwdHash: hash, Salt: salt}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// SignIn authenticates and issues an HS256 access token.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, peer string) (model.Tokens, model.User, error) {
	email = NormalizeEmail(email)
	client := limiter.ClientHash(peer)

	allowed, _, err := s.lim.Allow(ctx, email, client)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, model.User{}, err
	}
	if err != nil || !crypto.Verify(password, u.Salt, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, client); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, email, client)

	access, exp, err := s.issueAccessToken(u)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// WhoAmI returns the stored account.
func (s *AuthServiceImpl) WhoAmI(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrUnauthorized
	}
	return u, err
}

func (s *AuthServiceImpl) issueAccessToken(u *model.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	return signed, exp, err
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(raw string, key []byte) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	if _, err := uuid.FromString(c.Subject); err != nil {
		return nil, errs.ErrUnauthorized
	}
	return &c, nil
}
