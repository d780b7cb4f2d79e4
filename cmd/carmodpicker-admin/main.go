package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/carmodpicker/internal/admin"
	"github.com/dmitrijs2005/carmodpicker/internal/server"
	"github.com/dmitrijs2005/carmodpicker/internal/server/config"
)

func main() {
	app := admin.NewCLI(openUsers, os.Stdin, os.Stdout)
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openUsers(ctx context.Context, dsn string) (admin.UserAdmin, func() error, error) {
	cfg := config.LoadConfig()
	if dsn != "" {
		cfg.DatabaseDSN = dsn
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := app.Migrate(ctx); err != nil {
		_ = app.Close()
		return nil, nil, err
	}
	return app.Users(), app.Close, nil
}
