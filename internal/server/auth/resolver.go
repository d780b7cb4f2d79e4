package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

const (
	detailNotAuthenticated = "Not authenticated"
	detailBadCredentials   = "Could not validate credentials"
	detailInactive         = "Inactive user"
)

// UserFinder is the part of the users repository the resolver needs.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Resolver turns the credential carried by a request into a user.
type Resolver struct {
	tokens *TokenIssuer
	users  UserFinder
	log    logging.Logger
}

func NewResolver(tokens *TokenIssuer, users UserFinder, log logging.Logger) *Resolver {
	return &Resolver{tokens: tokens, users: users, log: log.With("module", "auth")}
}

// TokenFromRequest reads the access token cookie, falling back to an
// "Authorization: Bearer" header. It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get(common.AuthorizationHeaderName)
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// Resolve validates a login token and loads its user. It fails closed:
// a missing, malformed, expired or wrong-purpose token, or an unknown
// subject, yields common.ErrorUnauthenticated; a disabled account yields
// common.ErrorInactive.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.WithDetail(common.ErrorUnauthenticated, detailNotAuthenticated)
	}

	claims, err := r.tokens.ValidateFor(token, PurposeLogin)
	if err != nil {
		r.log.Debug(ctx, "token rejected", "error", err)
		return nil, common.WithDetail(common.ErrorUnauthenticated, detailBadCredentials)
	}

	user, err := r.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			r.log.Debug(ctx, "token subject not found", "subject", claims.Subject)
			return nil, common.WithDetail(common.ErrorUnauthenticated, detailBadCredentials)
		}
		return nil, err
	}

	if user.Disabled {
		return nil, common.WithDetail(common.ErrorInactive, detailInactive)
	}

	return user, nil
}

// ResolveRequest is Resolve applied to the request's carrier.
func (r *Resolver) ResolveRequest(req *http.Request) (*models.User, error) {
	return r.Resolve(req.Context(), TokenFromRequest(req))
}

// ResolveOptional is the guest-tolerant variant: any failure, including a
// store error, collapses to an anonymous caller (nil).
func (r *Resolver) ResolveOptional(req *http.Request) *models.User {
	token := TokenFromRequest(req)
	if token == "" {
		return nil
	}
	user, err := r.Resolve(req.Context(), token)
	if err != nil {
		return nil
	}
	return user
}
