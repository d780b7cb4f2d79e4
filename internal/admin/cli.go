// Package admin implements the operator command line: account creation and
// enabling or disabling accounts directly against the configured store.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/services"
	"github.com/urfave/cli/v2"
)

const minPasswordLength = 8

// UserAdmin is the part of the account service the tool drives.
type UserAdmin interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	SetDisabled(ctx context.Context, username string, disabled bool) (*models.User, error)
}

// Opener connects to storage. dsn overrides the configured database when
// non-empty. The returned func releases the connection.
type Opener func(ctx context.Context, dsn string) (UserAdmin, func() error, error)

// NewCLI builds the command tree. in supplies passwords when it is not a
// terminal; out receives prompts and results.
func NewCLI(open Opener, in io.Reader, out io.Writer) *cli.App {
	r := bufio.NewReader(in)

	withUsers := func(c *cli.Context, fn func(UserAdmin) error) error {
		users, closeFn, err := open(c.Context, c.String("dsn"))
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() { _ = closeFn() }()
		return fn(users)
	}

	return &cli.App{
		Name:      "carmodpicker-admin",
		Usage:     "manage carmodpicker accounts",
		Reader:    in,
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			// Both are read again by config.LoadConfig; they are declared so the
			// parser accepts them.
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a JSON or YAML config file"},
			&cli.StringFlag{Name: "dsn", Usage: "database DSN, overrides the configuration"},
		},
		Commands: []*cli.Command{
			{
				Name:  "create-user",
				Usage: "create an account, reading the password from the terminal or stdin",
				Flags: []cli.Flag{
					usernameFlag(),
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "account email", Required: true},
					&cli.StringFlag{Name: "first-name", Usage: "first name"},
					&cli.StringFlag{Name: "last-name", Usage: "last name"},
				},
				Action: func(c *cli.Context) error {
					pw, err := getPassword(r, out)
					if err != nil {
						return err
					}
					if len(pw) < minPasswordLength {
						return fmt.Errorf("password must be at least %d characters", minPasswordLength)
					}

					in := services.RegisterInput{
						Username: c.String("username"),
						Email:    c.String("email"),
						Password: pw,
					}
					if c.IsSet("first-name") {
						v := c.String("first-name")
						in.FirstName = &v
					}
					if c.IsSet("last-name") {
						v := c.String("last-name")
						in.LastName = &v
					}

					return withUsers(c, func(users UserAdmin) error {
						u, err := users.Register(c.Context, in)
						if err != nil {
							return describe(err)
						}
						fmt.Fprintf(out, "created user %s (id %d)\n", u.Username, u.ID)
						return nil
					})
				},
			},
			setDisabledCommand("disable-user", "block an account from signing in", true, withUsers, out),
			setDisabledCommand("enable-user", "allow a disabled account to sign in again", false, withUsers, out),
		},
	}
}

func usernameFlag() cli.Flag {
	return &cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "account username", Required: true}
}

func setDisabledCommand(name, usage string, disabled bool,
	withUsers func(*cli.Context, func(UserAdmin) error) error, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{usernameFlag()},
		Action: func(c *cli.Context) error {
			return withUsers(c, func(users UserAdmin) error {
				u, err := users.SetDisabled(c.Context, c.String("username"), disabled)
				if err != nil {
					return describe(err)
				}
				state := "enabled"
				if u.Disabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "user %s is %s\n", u.Username, state)
				return nil
			})
		},
	}
}

// describe replaces service errors with their client-facing message.
func describe(err error) error {
	if d := common.Detail(err, ""); d != "" {
		return errors.New(d)
	}
	return err
}
