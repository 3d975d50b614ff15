package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/identity"
	"github.com/learnage/portal/internal/model"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// ProviderLocal tags identities issued by AuthService.
const ProviderLocal = "local"

// Claims extends JWT standard claims with the identity fields.
type Claims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// AuthService is the built-in identity provider: it hashes passwords, issues
// short-lived identity tokens and tracks them in Redis so sign-out revokes them.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, now: time.Now}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs an identity token for the user and registers its session.
func (s *AuthService) IssueToken(ctx context.Context, u *model.User) (string, time.Time, error) {
	jti := uuid.New().String()
	now := s.now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: u.Email,
		Role:  u.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	sessionKey := config.CacheKey.IdentitySessionKey(jti)
	if err := s.rdb.Set(ctx, sessionKey, u.UID, s.cfg.JWTExpiry).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseToken validates signature and expiry, returning the claims.
func (s *AuthService) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, identity.ErrInvalidToken
	}

	return claims, nil
}

// VerifyIDToken accepts a token only while its session is still registered.
func (s *AuthService) VerifyIDToken(ctx context.Context, tokenStr string) (*identity.Identity, error) {
	claims, err := s.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}

	owner, err := s.rdb.Get(ctx, config.CacheKey.IdentitySessionKey(claims.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: session revoked", identity.ErrInvalidToken)
		}
		return nil, fmt.Errorf("check session: %w", err)
	}
	if owner != claims.Subject {
		return nil, fmt.Errorf("%w: session owner mismatch", identity.ErrInvalidToken)
	}

	return &identity.Identity{
		UID:      claims.Subject,
		Email:    claims.Email,
		Provider: ProviderLocal,
	}, nil
}

// Revoke ends the session behind a token. Revoking an already revoked token is a no-op.
func (s *AuthService) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := s.ParseToken(tokenStr)
	if err != nil {
		return err
	}
	return s.rdb.Del(ctx, config.CacheKey.IdentitySessionKey(claims.ID)).Err()
}
