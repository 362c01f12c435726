package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-llm/internal/domain"
)

// JWTService emite y valida tokens de acceso HS256.
type JWTService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	now     func() time.Time
	revoked RevocationStore
	logger  *zap.Logger
}

type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
}

type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrJWTSecretMissing = errors.New("jwt secret is required")
	ErrJWTInvalid       = errors.New("jwt invalid")
	ErrJWTExpired       = errors.New("jwt expired")
	ErrTokenRevoked     = errors.New("jwt revoked")
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultIssuer   = "recipe-llm"
)

type JWTOption func(*JWTService)

func WithIssuer(issuer string) JWTOption {
	return func(s *JWTService) {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithClock reemplaza el reloj usado para firmar y validar expiración.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithRevocationStore(store RevocationStore) JWTOption {
	return func(s *JWTService) {
		s.revoked = store
	}
}

func WithLogger(logger *zap.Logger) JWTOption {
	return func(s *JWTService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewJWTService(secret string, ttl time.Duration, opts ...JWTOption) (*JWTService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrJWTSecretMissing
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	s := &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: defaultIssuer,
		now:    func() time.Time { return time.Now().UTC() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

func (s *JWTService) GenerateToken(user domain.User) (AccessToken, error) {
	if strings.TrimSpace(user.ID) == "" {
		return AccessToken{}, ErrJWTInvalid
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}

// ParseAccessToken valida firma, emisor y expiración; un token es rechazado desde el instante exacto de exp.
func (s *JWTService) ParseAccessToken(accessToken string) (Claims, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return Claims{}, ErrJWTInvalid
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(accessToken, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if !validClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(claims.ID)
		if err != nil {
			s.logger.Warn("revocation lookup failed", zap.Error(err))
		} else if revoked {
			return Claims{}, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke invalida el token durante el tiempo que le queda de vida.
func (s *JWTService) Revoke(claims Claims) error {
	if s.revoked == nil || strings.TrimSpace(claims.ID) == "" {
		return nil
	}
	if claims.ExpiresAt == nil {
		return ErrJWTInvalid
	}
	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	return s.revoked.Revoke(claims.ID, remaining)
}

func validClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	return claims.Subject == claims.UserID
}
