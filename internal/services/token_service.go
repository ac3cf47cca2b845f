package services

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session token payload. IsAdmin reflects the user at issue
// time only; authorization always re-reads the user.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService issues and verifies stateless HS256 session tokens. There is
// no revocation list; a token stays valid until it expires.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// KeyFunc resolves the signing key for a parsed token. The bearer-token
// middleware and the methods below share it, so only HS256 tokens signed
// with this secret are ever accepted.
func (s *TokenService) KeyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
	}
	return s.secret, nil
}

// Verify checks signature and expiry.
func (s *TokenService) Verify(token string) (*Claims, error) {
	return s.parse(token)
}

// ParseIgnoringExpiry checks only the signature, so expired tokens can be
// exchanged for fresh ones.
func (s *TokenService) ParseIgnoringExpiry(token string) (*Claims, error) {
	return s.parse(token, jwt.WithoutClaimsValidation())
}

func (s *TokenService) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.KeyFunc, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
