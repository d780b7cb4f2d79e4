package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func newIssuer(t *testing.T, secret string) *TokenIssuer {
	t.Helper()
	i, err := NewTokenIssuer(secret, "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	return i
}

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "super-secret")

	tok, err := i.Issue("alice", PurposeLogin, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := i.Validate(tok)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "alice")
	}
	if claims.ID == "" {
		t.Fatal("expected a token id")
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != time.Hour {
		t.Fatalf("default ttl not applied: %v", ttl)
	}
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "secret")

	tok, err := i.Issue("u1", PurposeLogin, -1*time.Second)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = i.Validate(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestValidate_AcceptedUntilExpiry(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "secret")
	start := time.Now()
	i.now = func() time.Time { return start }

	tok, err := i.Issue("u1", PurposeLogin, time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	i.now = func() time.Time { return start.Add(59 * time.Second) }
	if _, err := i.Validate(tok); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	i.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := i.Validate(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newIssuer(t, "right-secret").Issue("u2", PurposeLogin, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = newIssuer(t, "wrong-secret").Validate(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for invalid signature, got %v", err)
	}
}

func TestValidate_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := newIssuer(t, "k").Validate("not.a.jwt")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestValidate_AlgorithmMismatch(t *testing.T) {
	t.Parallel()

	secret := "shared"
	hs512, err := NewTokenIssuer(secret, "HS512", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	tok, err := hs512.Issue("u", PurposeLogin, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := newIssuer(t, secret).Validate(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("HS256 issuer accepted an HS512 token: %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}
	if _, err := newIssuer(t, secret).Validate(unsigned); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("alg=none token accepted: %v", err)
	}
}

func TestValidate_MissingExpiryOrSubject(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	i := newIssuer(t, "k")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString(key)
	if _, err := i.Validate(noExp); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("token without exp accepted: %v", err)
	}

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(key)
	if _, err := i.Validate(noSub); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("token without subject accepted: %v", err)
	}
}

func TestValidateFor_Purpose(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "k")

	tests := []struct {
		name    string
		issued  Purpose
		want    Purpose
		wantErr error
	}{
		{name: "login ok", issued: PurposeLogin, want: PurposeLogin},
		{name: "empty purpose is login", issued: "", want: PurposeLogin},
		{name: "verify ok", issued: PurposeVerifyEmail, want: PurposeVerifyEmail},
		{name: "reset ok", issued: PurposeResetPassword, want: PurposeResetPassword},
		{name: "login cannot reset", issued: PurposeLogin, want: PurposeResetPassword, wantErr: common.ErrTokenPurpose},
		{name: "login cannot verify", issued: PurposeLogin, want: PurposeVerifyEmail, wantErr: common.ErrTokenPurpose},
		{name: "reset cannot login", issued: PurposeResetPassword, want: PurposeLogin, wantErr: common.ErrTokenPurpose},
		{name: "verify cannot reset", issued: PurposeVerifyEmail, want: PurposeResetPassword, wantErr: common.ErrTokenPurpose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := i.Issue("alice@x.com", tt.issued, time.Hour)
			if err != nil {
				t.Fatalf("Issue error: %v", err)
			}
			_, err = i.ValidateFor(tok, tt.want)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateFor() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTokenIssuer_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{"RS256", "none", "ES256", "bogus"} {
		if _, err := NewTokenIssuer("k", alg, time.Hour); err == nil {
			t.Fatalf("algorithm %q accepted", alg)
		}
	}
	if _, err := NewTokenIssuer("", "HS256", time.Hour); err == nil {
		t.Fatal("empty key accepted")
	}
}
