package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexis/internal/adapters/driven/watcher"
	"github.com/custodia-labs/lexis/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/lexis/internal/core/services"
)

var (
	serveAddr  string
	serveWatch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Loads the predefined corpora and serves the HTTP API:

  POST /ask-existing   query
  POST /ask-upload     query, file
  POST /ask-context    query, file_id
  POST /defend-case    file or description
  POST /chat           query
  GET  /corpora
  GET  /health

With --watch, documents dropped into the directory are indexed as they
arrive so questions about them can use /ask-context.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from settings, :8000)")
	serveCmd.Flags().StringVarP(&serveWatch, "watch", "w", "", "directory to auto-ingest documents from")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, release, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer release()
	ctx := cmd.Context()

	loaded, err := rt.Corpora.Preload(ctx, rt.Definitions)
	if err != nil {
		return fmt.Errorf("load corpora: %w", err)
	}
	cmd.Printf("Loaded %d of %d predefined corpora\n", loaded, len(rt.Definitions))

	server, err := httpapi.NewServer(
		&httpapi.Ports{Ask: rt.Ask, Corpora: rt.Corpora},
		httpapi.WithMaxUploadBytes(rt.Server.MaxUploadBytes),
	)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = rt.Server.Addr
	}
	if addr == "" {
		addr = ":8000"
	}

	g, gctx := errgroup.WithContext(ctx)
	if serveWatch != "" {
		w, err := watcher.New()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		inbox := services.NewInbox(rt.Corpora, w)
		g.Go(func() error {
			return inbox.Run(gctx, serveWatch)
		})
		cmd.Printf("Watching %s for new documents\n", serveWatch)
	}

	g.Go(func() error {
		return server.Run(gctx, addr)
	})
	cmd.Printf("HTTP API listening on %s\n", addr)

	return g.Wait()
}
