package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

var corporaJSON bool

var corporaCmd = &cobra.Command{
	Use:   "corpora",
	Short: "List indexed corpora",
	Long:  `Lists the predefined corpora followed by uploaded documents already indexed.`,
	Args:  cobra.NoArgs,
	RunE:  runCorpora,
}

func init() {
	corporaCmd.Flags().BoolVar(&corporaJSON, "json", false, "output corpora as JSON")
	rootCmd.AddCommand(corporaCmd)
}

func runCorpora(cmd *cobra.Command, _ []string) error {
	rt, release, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer release()
	ctx := cmd.Context()

	if _, err := rt.Corpora.Preload(ctx, rt.Definitions); err != nil {
		return err
	}
	corpora, err := rt.Corpora.List(ctx)
	if err != nil {
		return err
	}

	if corporaJSON {
		if corpora == nil {
			corpora = []domain.Corpus{}
		}
		return outputJSON(cmd, corpora)
	}
	return outputCorporaTable(cmd, corpora)
}

func outputCorporaTable(cmd *cobra.Command, corpora []domain.Corpus) error {
	if len(corpora) == 0 {
		cmd.Println("No corpora indexed.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tPASSAGES\tMODEL\tKEY")
	for _, c := range corpora {
		name := c.Name
		if c.Kind == domain.CorpusAdHoc {
			name = "(upload)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", c.Kind, name, c.Passages, c.Model, c.Key)
	}
	return w.Flush()
}
