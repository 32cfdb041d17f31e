package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token scopes. A token is only accepted where its scope matches.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeReset   = "reset_token"
)

const (
	DefaultAccessTTL  = 180 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultResetTTL   = 24 * time.Hour
)

// ErrUnauthorized is returned for any token that fails verification.
var ErrUnauthorized = errors.New("Could not validate credentials")

// Config holds the signing configuration
type Config struct {
	SecretKey  string
	Algorithm  string // HS256 or HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
	BcryptCost int
}

// Claims is the JWT payload: sub, iat, exp and scope.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens and password hashes.
type Service struct {
	cfg    Config
	method jwt.SigningMethod
	now    func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("auth: secret key is required")
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "", "HS256":
		cfg.Algorithm = "HS256"
		method = jwt.SigningMethodHS256
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported algorithm %q", cfg.Algorithm)
	}

	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &Service{cfg: cfg, method: method, now: time.Now}, nil
}

func (s *Service) CreateAccessToken(subject string) (string, error) {
	return s.createToken(subject, ScopeAccess, s.cfg.AccessTTL)
}

func (s *Service) CreateRefreshToken(subject string) (string, error) {
	return s.createToken(subject, ScopeRefresh, s.cfg.RefreshTTL)
}

func (s *Service) CreateResetToken(subject string) (string, error) {
	return s.createToken(subject, ScopeReset, s.cfg.ResetTTL)
}

func (s *Service) createToken(subject, scope string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", scope, err)
	}
	return signed, nil
}

// DecodeAccessToken returns the subject of a valid access token.
func (s *Service) DecodeAccessToken(token string) (string, error) {
	return s.decode(token, ScopeAccess)
}

// DecodeRefreshToken returns the subject of a valid refresh token.
func (s *Service) DecodeRefreshToken(token string) (string, error) {
	return s.decode(token, ScopeRefresh)
}

// NameFromResetToken returns the cat name a reset token was issued for.
func (s *Service) NameFromResetToken(token string) (string, error) {
	return s.decode(token, ScopeReset)
}

func (s *Service) decode(token, scope string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(s.cfg.SecretKey), nil },
		jwt.WithValidMethods([]string{s.cfg.Algorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Scope != scope {
		return "", fmt.Errorf("%w: invalid scope for token", ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims.Subject, nil
}

// HashPassword returns the bcrypt hash of plain.
func (s *Service) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
