// Command lexis answers legal questions over statutes and uploaded documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/lexis/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexis/internal/adapters/driven/config/env"
	"github.com/custodia-labs/lexis/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexis/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexis/internal/app"
	"github.com/custodia-labs/lexis/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := env.LoadDotEnv(); err != nil {
		return err
	}

	configDir, err := file.DefaultDir()
	if err != nil {
		return err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetSettingsService(settingsService)
	cli.SetRuntimeLoader(func(_ context.Context) (*cli.Runtime, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, err
		}
		if err := env.Apply(settings); err != nil {
			return nil, err
		}

		a, err := app.New(settings, configDir)
		if err != nil {
			return nil, err
		}
		return &cli.Runtime{
			Ask:         a.Ask,
			Corpora:     a.Corpora,
			Definitions: a.Definitions,
			Server:      settings.Server,
			Close:       a.Close,
		}, nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}
