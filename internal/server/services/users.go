// Package services contains server-side business logic. Each service runs a
// request as one unit of work through a dbx.Runner and reports failures as
// the sentinel errors of package common, optionally carrying a client-facing
// detail message.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/auth"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
)

const (
	detailUsernameTaken   = "Username already registered"
	detailEmailTaken      = "Email already registered"
	detailUserNotFound    = "User not found"
	detailCurrentRequired = "Current password is required to change username, email or password"
	detailCurrentWrong    = "Incorrect current password"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// UserUpdateInput is a profile update. Username, Email and Password are
// sensitive: changing any of them requires CurrentPassword.
type UserUpdateInput struct {
	Username        *string
	Email           *string
	FirstName       *string
	LastName        *string
	Password        *string
	CurrentPassword *string
}

// UserService manages accounts.
type UserService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewUserService(runner dbx.Runner, rm repomanager.RepositoryManager, log logging.Logger) *UserService {
	return &UserService{runner: runner, repomanager: rm, log: log.With("module", "users")}
}

// Register creates an account. Duplicate usernames and emails are caught by
// a lookup first; the unique constraints of the store catch the ones that
// race past it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if err := checkFree(ctx, repo.GetByUsername, in.Username, common.ErrUsernameTaken, detailUsernameTaken); err != nil {
			return err
		}
		if err := checkFree(ctx, repo.GetByEmail, in.Email, common.ErrEmailTaken, detailEmailTaken); err != nil {
			return err
		}

		created, err = repo.Create(ctx, &models.User{
			Username:       in.Username,
			Email:          in.Email,
			FirstName:      in.FirstName,
			LastName:       in.LastName,
			HashedPassword: hash,
		})
		return conflictDetail(err)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

func checkFree(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value string, kind error, detail string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return common.WithDetail(kind, detail)
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

// conflictDetail attaches the client message to a unique-constraint error.
func conflictDetail(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrUsernameTaken):
		return common.WithDetail(common.ErrUsernameTaken, detailUsernameTaken)
	case errors.Is(err, common.ErrEmailTaken):
		return common.WithDetail(common.ErrEmailTaken, detailEmailTaken)
	default:
		return err
	}
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundDetail(err, detailUserNotFound)
	}
	return u, nil
}

// Update changes the actor's own profile.
func (s *UserService) Update(ctx context.Context, actor *models.User, id int64, in UserUpdateInput) (*models.User, error) {
	if actor.ID != id {
		return nil, common.WithDetail(common.ErrorForbidden, "Not authorized to update this user")
	}

	var updated *models.User
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFoundDetail(err, detailUserNotFound)
		}

		if in.Username != nil || in.Email != nil || in.Password != nil {
			if in.CurrentPassword == nil || *in.CurrentPassword == "" {
				return common.WithDetail(common.ErrorValidation, detailCurrentRequired)
			}
			if !auth.VerifyPassword(*in.CurrentPassword, user.HashedPassword) {
				return common.WithDetail(common.ErrorValidation, detailCurrentWrong)
			}
		}

		upd := models.UserUpdate{
			Username:  in.Username,
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
		}
		if in.Email != nil && *in.Email != user.Email {
			unverified := false
			upd.EmailVerified = &unverified
		}
		if in.Password != nil {
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return err
			}
			upd.HashedPassword = &hash
		}

		user.Apply(upd)
		updated, err = repo.Update(ctx, user)
		return conflictDetail(notFoundDetail(err, detailUserNotFound))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the actor's own account and everything it owns.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if actor.ID != id {
		return nil, common.WithDetail(common.ErrorForbidden, "Not authorized to delete this user")
	}

	var deleted *models.User
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFoundDetail(err, detailUserNotFound)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return notFoundDetail(err, detailUserNotFound)
		}
		deleted = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user deleted", "user_id", id)
	return deleted, nil
}

// SetDisabled enables or disables the account named username.
func (s *UserService) SetDisabled(ctx context.Context, username string, disabled bool) (*models.User, error) {
	var user *models.User
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByUsername(ctx, username)
		if err != nil {
			return notFoundDetail(err, detailUserNotFound)
		}
		if err := repo.SetDisabled(ctx, u.ID, disabled); err != nil {
			return fmt.Errorf("set disabled: %w", err)
		}
		u.Disabled = disabled
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user disabled flag changed", "user_id", user.ID, "disabled", disabled)
	return user, nil
}

// notFoundDetail gives a bare common.ErrorNotFound a client message.
func notFoundDetail(err error, detail string) error {
	if err != nil && errors.Is(err, common.ErrorNotFound) && common.Detail(err, "") == "" {
		return common.WithDetail(common.ErrorNotFound, detail)
	}
	return err
}
