package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the "kind" claim
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for malformed, badly signed or expired tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrWrongKind is returned when a token of one kind is used as the other
	ErrWrongKind = errors.New("wrong token kind")
)

// Config holds signing parameters
type Config struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Claims represents JWT claims
type Claims struct {
	jwtlib.RegisteredClaims
	Kind string `json:"kind"`
}

// UserID returns the subject parsed as a user ID
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// Service provides JWT token generation and validation
type Service struct {
	now    func() time.Time
	parser *jwtlib.Parser
	secret []byte
	cfg    Config
}

// NewService creates a new JWT service
// secret should be a cryptographically secure random string
func NewService(cfg Config) *Service {
	s := &Service{
		secret: []byte(cfg.Secret),
		cfg:    cfg,
		now:    time.Now,
	}
	s.parser = s.newParser()
	return s
}

// WithClock replaces the time source, used in tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.parser = s.newParser()
	return s
}

func (s *Service) newParser() *jwtlib.Parser {
	opts := []jwtlib.ParserOption{
		// Принимаем только HS256, иначе возможна подмена алгоритма
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithIssuedAt(),
		jwtlib.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.cfg.Issuer))
	}
	return jwtlib.NewParser(opts...)
}

// AccessTokenTTL returns the configured access token lifetime
func (s *Service) AccessTokenTTL() time.Duration {
	return s.cfg.AccessTokenTTL
}

// GenerateAccessToken creates a short-lived access token for userID
func (s *Service) GenerateAccessToken(userID int64) (string, time.Time, error) {
	token, expiresAt, err := s.generate(userID, KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return token, expiresAt, nil
}

// GenerateRefreshToken creates a long-lived refresh token for userID
func (s *Service) GenerateRefreshToken(userID int64) (string, time.Time, error) {
	token, expiresAt, err := s.generate(userID, KindRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return token, expiresAt, nil
}

// ValidateAccessToken verifies signature, expiry and kind of an access token
func (s *Service) ValidateAccessToken(token string) (*Claims, error) {
	return s.validate(token, KindAccess)
}

// ValidateRefreshToken verifies signature, expiry and kind of a refresh token
func (s *Service) ValidateRefreshToken(token string) (*Claims, error) {
	return s.validate(token, KindRefresh)
}

func (s *Service) generate(userID int64, kind string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			// jti делает токены уникальными даже в пределах одной секунды
			ID: uuid.NewString(),
		},
		Kind: kind,
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (s *Service) validate(token, kind string) (*Claims, error) {
	claims := &Claims{}

	_, err := s.parser.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrWrongKind, kind)
	}

	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	return claims, nil
}
