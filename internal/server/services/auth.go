package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/auth"
	"github.com/dmitrijs2005/carmodpicker/internal/server/mail"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
)

const (
	detailBadLogin        = "Incorrect username or password"
	detailInactive        = "Inactive user"
	detailInvalidToken    = "Invalid or expired token"
	detailAlreadyVerified = "Email already verified"
)

// Session is the result of a successful authentication.
type Session struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        *models.User
}

// AuthService implements login and the token-driven email verification
// and password reset flows.
type AuthService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenIssuer
	mailer      mail.Sender
	frontendURL string
	emailTTL    time.Duration
	log         logging.Logger
}

func NewAuthService(runner dbx.Runner, rm repomanager.RepositoryManager, tokens *auth.TokenIssuer,
	mailer mail.Sender, frontendURL string, emailTTL time.Duration, log logging.Logger) *AuthService {
	return &AuthService{
		runner:      runner,
		repomanager: rm,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		emailTTL:    emailTTL,
		log:         log.With("module", "auth"),
	}
}

// Login checks the password and issues a login token. Unknown users and
// wrong passwords are indistinguishable; a disabled account is reported as
// inactive only after the password matched.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.runner.Conn()).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithDetail(common.ErrorUnauthenticated, detailBadLogin)
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.HashedPassword) {
		s.log.Info(ctx, "login failed", "username", username)
		return nil, common.WithDetail(common.ErrorUnauthenticated, detailBadLogin)
	}
	if user.Disabled {
		return nil, common.WithDetail(common.ErrorInactive, detailInactive)
	}

	return s.session(user)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.Username, auth.PurposeLogin, 0)
	if err != nil {
		return nil, fmt.Errorf("issue login token: %w", err)
	}
	return &Session{AccessToken: token, ExpiresIn: s.tokens.DefaultTTL(), User: user}, nil
}

// RequestEmailVerification mails the actor a verify_email link.
func (s *AuthService) RequestEmailVerification(ctx context.Context, actor *models.User) error {
	if actor.EmailVerified {
		return common.WithDetail(common.ErrorValidation, detailAlreadyVerified)
	}
	if err := s.sendTokenMail(ctx, actor, auth.PurposeVerifyEmail, mail.TemplateVerifyEmail, "/verify-email"); err != nil {
		s.log.Error(ctx, "verification email failed", "error", err, "user_id", actor.ID)
		return err
	}
	return nil
}

// ConfirmEmailVerification marks the token's subject verified and signs
// them in. Confirming an already verified address succeeds again.
func (s *AuthService) ConfirmEmailVerification(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.ValidateFor(token, auth.PurposeVerifyEmail)
	if err != nil {
		s.log.Debug(ctx, "verification token rejected", "error", err)
		return nil, common.WithDetail(common.ErrorValidation, detailInvalidToken)
	}

	var user *models.User
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByEmail(ctx, claims.Subject)
		if err != nil {
			return notFoundDetail(err, detailUserNotFound)
		}
		if u.Disabled {
			return common.WithDetail(common.ErrorInactive, detailInactive)
		}
		if !u.EmailVerified {
			verified := true
			u.Apply(models.UserUpdate{EmailVerified: &verified})
			if u, err = repo.Update(ctx, u); err != nil {
				return err
			}
			s.log.Info(ctx, "email verified", "user_id", u.ID)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.session(user)
}

// RequestPasswordReset mails a reset link to the account with the given
// email. It reports success whether or not such an account exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.runner.Conn()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "password reset for unknown email")
			return nil
		}
		return err
	}

	if err := s.sendTokenMail(ctx, user, auth.PurposeResetPassword, mail.TemplateResetPassword, "/reset-password"); err != nil {
		s.log.Error(ctx, "password reset email failed", "error", err, "user_id", user.ID)
	}
	return nil
}

// ConfirmPasswordReset replaces the password of the token's subject.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.ValidateFor(token, auth.PurposeResetPassword)
	if err != nil {
		s.log.Debug(ctx, "reset token rejected", "error", err)
		return common.WithDetail(common.ErrorValidation, detailInvalidToken)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByEmail(ctx, claims.Subject)
		if err != nil {
			return notFoundDetail(err, detailUserNotFound)
		}
		u.Apply(models.UserUpdate{HashedPassword: &hash})
		if _, err := repo.Update(ctx, u); err != nil {
			return err
		}
		s.log.Info(ctx, "password reset", "user_id", u.ID)
		return nil
	})
}

func (s *AuthService) sendTokenMail(ctx context.Context, user *models.User, purpose auth.Purpose, templateID, path string) error {
	token, err := s.tokens.Issue(user.Email, purpose, s.emailTTL)
	if err != nil {
		return fmt.Errorf("issue %s token: %w", purpose, err)
	}

	link := s.frontendURL + path + "?token=" + url.QueryEscape(token)
	return s.mailer.Send(ctx, user.Email, templateID, map[string]any{
		"Username":  user.Username,
		"Link":      link,
		"ExpiresIn": s.emailTTL.String(),
	})
}
