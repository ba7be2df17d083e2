package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

var (
	defendFile        string
	defendDescription string
)

var defendCmd = &cobra.Command{
	Use:   "defend",
	Short: "Draft a defense strategy for a case",
	Long: `Drafts a defense strategy from a case file (--file) or a plain
description of the case (--description). The case text must be at least
50 characters long.`,
	Args: cobra.NoArgs,
	RunE: runDefend,
}

func init() {
	defendCmd.Flags().StringVarP(&defendFile, "file", "f", "", "case file (PDF, DOCX, HTML, Markdown or text)")
	defendCmd.Flags().StringVarP(&defendDescription, "description", "d", "", "case description")
	rootCmd.AddCommand(defendCmd)
}

func runDefend(cmd *cobra.Command, _ []string) error {
	if defendFile == "" && defendDescription == "" {
		return errors.New("provide a case file with --file or a description with --description")
	}

	var raw *domain.RawDocument
	if defendFile != "" {
		doc, err := readDocument(defendFile)
		if err != nil {
			return err
		}
		raw = doc
	}

	rt, release, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer release()

	answer, err := rt.Ask.DefendCase(cmd.Context(), raw, defendDescription)
	if err != nil {
		return explain(err)
	}
	cmd.Println(answer.Text)
	return nil
}
