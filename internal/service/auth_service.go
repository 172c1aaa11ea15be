package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"user_management/internal/models"
	"user_management/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = time.Hour

// Domain errors for auth flows.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthConfig holds the token signing parameters.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

// AuthService handles sign-in and token verification.
type AuthService struct {
	users  repository.Users
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(repo repository.Users, cfg AuthConfig) *AuthService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		users:  repo,
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Claims defines JWT claims. Subject carries the user id as a decimal string.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// SignIn validates credentials and returns a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(u.ID, u.Role)
}

// IssueToken signs {sub, role, iat, exp, jti} with the configured secret.
func (s *AuthService) IssueToken(userID int64, role models.Role) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("issue token: non-positive user id %d", userID)
	}
	if !role.Valid() {
		return "", fmt.Errorf("issue token: unknown role %q", role)
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: role,
	})
	return token.SignedString(s.secret)
}

// ParseToken verifies the token and decodes its identity claim.
// Any verification failure or shape mismatch wraps ErrInvalidToken.
func (s *AuthService) ParseToken(accessToken string) (models.Identity, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return models.Identity{}, fmt.Errorf("%w: subject %q is not a positive integer", ErrInvalidToken, claims.Subject)
	}
	if !claims.Role.Valid() {
		return models.Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return models.Identity{UserID: id, Role: claims.Role}, nil
}
