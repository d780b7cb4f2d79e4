// Package auth implements password hashing, signed purpose-scoped tokens and
// the request identity resolver.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose tags what a token may be used for.
type Purpose string

const (
	PurposeLogin         Purpose = "login"
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposeResetPassword Purpose = "reset_password"
)

// Claims are the registered JWT claims plus the purpose tag. Subject holds
// the username for login tokens and the email for verify/reset tokens.
type Claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"purpose,omitempty"`
}

// EffectivePurpose treats a missing purpose as a login token.
func (c *Claims) EffectivePurpose() Purpose {
	if c.Purpose == "" {
		return PurposeLogin
	}
	return c.Purpose
}

// TokenIssuer signs and validates tokens with one process-wide key and
// HMAC algorithm. Changing either invalidates every outstanding token.
type TokenIssuer struct {
	key        []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer builds an issuer. algorithm must be HS256, HS384 or HS512.
func NewTokenIssuer(secret, algorithm string, defaultTTL time.Duration) (*TokenIssuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("empty signing key")
	}
	return &TokenIssuer{
		key:        []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a token for subject. A zero ttl uses the issuer default.
func (i *TokenIssuer) Issue(subject string, purpose Purpose, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = i.defaultTTL
	}
	now := i.now()

	token := jwt.NewWithClaims(i.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	})

	s, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// DefaultTTL is the lifetime used when Issue gets a zero ttl.
func (i *TokenIssuer) DefaultTTL() time.Duration { return i.defaultTTL }

// Validate checks signature, algorithm and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// yields common.ErrInvalidToken.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ValidateFor is Validate plus an exact purpose match.
func (i *TokenIssuer) ValidateFor(tokenString string, purpose Purpose) (*Claims, error) {
	claims, err := i.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.EffectivePurpose() != purpose {
		return nil, common.ErrTokenPurpose
	}
	return claims, nil
}
