package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index documents for later questions",
	Long: `Extracts, chunks and embeds each file as its own corpus. The printed
file id can be passed to 'lexis ask --context'. Indexing the same bytes
again reuses the cached index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	rt, release, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer release()

	var failed int
	for _, path := range args {
		raw, err := readDocument(path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		corpus, err := rt.Corpora.Ingest(cmd.Context(), raw)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("%s\t%s\t%d passages\n", corpus.Key, path, corpus.Passages)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
