// internal/token/token.service.go
package token

import (
	"errors"
	"time"

	xerrors "auth-service/pkg/utils/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type discriminators. Every token carries exactly one; callers check
// it against the expected use before trusting the claims.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeTemp    = "temp"
)

type Claims struct {
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Service mints and validates the three token variants. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	tempTTL    time.Duration
}

func NewService(secret, algorithm string, accessTTL, refreshTTL, tempTTL time.Duration) *Service {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &Service{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tempTTL:    tempTTL,
	}
}

// IssueAccess mints a short-lived bearer token for API calls.
func (s *Service) IssueAccess(userID uuid.UUID, phone, role string) (string, error) {
	now := time.Now().UTC()
	return s.sign(Claims{
		Phone:     phone,
		Role:      role,
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
}

// IssueRefresh mints a long-lived token used only to obtain new pairs.
func (s *Service) IssueRefresh(userID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	return s.sign(Claims{
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
}

// IssueTemp mints the registration-completion token proving phone ownership.
func (s *Service) IssueTemp(phone string) (string, error) {
	now := time.Now().UTC()
	return s.sign(Claims{
		Phone:     phone,
		TokenType: TypeTemp,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tempTTL)),
		},
	})
}

func (s *Service) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Validate checks signature, algorithm and expiry. It does not check the
// type claim; that stays with the caller so Validate serves all variants.
// Expired tokens come back as xerrors.ErrExpiredToken, everything else
// invalid as xerrors.ErrInvalidToken.
func (s *Service) Validate(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, xerrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, xerrors.ErrExpiredToken
		}
		return nil, xerrors.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, xerrors.ErrInvalidToken
	}
	return claims, nil
}
