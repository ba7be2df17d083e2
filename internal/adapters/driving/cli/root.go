// Package cli implements the lexis command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=v1.2.3".
var version = "dev"

var verbose bool

// Runtime is the set of services a command needs to answer questions.
type Runtime struct {
	Ask         driving.AskService
	Corpora     driving.CorpusService
	Definitions []domain.CorpusDefinition
	Server      domain.ServerSettings
	Close       func() error
}

// RuntimeLoader builds a Runtime. It runs once per command that needs one.
type RuntimeLoader func(ctx context.Context) (*Runtime, error)

var (
	settingsService driving.SettingsService
	loadRuntime     RuntimeLoader
)

var rootCmd = &cobra.Command{
	Use:   "lexis",
	Short: "Legal document question answering",
	Long: `Lexis answers legal questions from predefined statutes and from
documents you upload. It extracts text from PDFs (falling back to OCR for
scans), indexes passages semantically and asks an LLM to answer from the
most relevant passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log extraction, caching and retrieval steps")
}

// SetSettingsService sets the settings service used by the settings commands.
func SetSettingsService(svc driving.SettingsService) {
	settingsService = svc
}

// SetRuntimeLoader sets how commands obtain the ask and corpus services.
func SetRuntimeLoader(loader RuntimeLoader) {
	loadRuntime = loader
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openRuntime loads the services for cmd. Callers must call the returned
// release func when done.
func openRuntime(cmd *cobra.Command) (*Runtime, func(), error) {
	if loadRuntime == nil {
		return nil, nil, errors.New("services not configured")
	}
	rt, err := loadRuntime(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if rt.Close != nil {
			if err := rt.Close(); err != nil {
				logger.Warn("close services: %v", err)
			}
		}
	}
	return rt, release, nil
}
