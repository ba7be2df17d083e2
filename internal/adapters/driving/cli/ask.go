package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

var (
	askFile    string
	askContext string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a legal question",
	Long: `Answers a question from the predefined corpora.

With --file the question is answered from that document instead; the
document is indexed once and its file id printed so later questions can
use --context without uploading it again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the legal assistant without retrieval",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "answer from this document (PDF, DOCX, HTML, Markdown or text)")
	askCmd.Flags().StringVarP(&askContext, "context", "c", "", "answer from a previously uploaded document's file id")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.MarkFlagsMutuallyExclusive("file", "context")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	rt, release, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer release()
	ctx := cmd.Context()

	var answer domain.Answer
	switch {
	case askFile != "":
		raw, rerr := readDocument(askFile)
		if rerr != nil {
			return rerr
		}
		answer, err = rt.Ask.AskUpload(ctx, query, raw)
	case askContext != "":
		answer, err = rt.Ask.AskContext(ctx, query, askContext)
	default:
		if _, perr := rt.Corpora.Preload(ctx, rt.Definitions); perr != nil {
			return fmt.Errorf("load corpora: %w", perr)
		}
		answer, err = rt.Ask.AskExisting(ctx, query)
	}
	if err != nil {
		return explain(err)
	}

	if askJSON {
		return outputJSON(cmd, answerJSON{Answer: answer.Text, Source: answer.Source, FileID: answer.FileID})
	}
	printAnswer(cmd, answer)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, release, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer release()

	answer, err := rt.Ask.Chat(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return explain(err)
	}
	cmd.Println(answer.Text)
	return nil
}

type answerJSON struct {
	Answer string `json:"answer"`
	Source string `json:"source,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

func printAnswer(cmd *cobra.Command, answer domain.Answer) {
	cmd.Println(answer.Text)
	if answer.Source != "" || answer.FileID != "" {
		cmd.Println()
	}
	if answer.Source != "" {
		cmd.Printf("Source: %s\n", answer.Source)
	}
	if answer.FileID != "" {
		cmd.Printf("File ID: %s\n", answer.FileID)
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// readDocument loads a local file as an uploaded document.
func readDocument(path string) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.NewRawDocument(filepath.Base(path), "", content), nil
}

// explain turns domain errors into messages a terminal user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, domain.ErrNoCorpora):
		return fmt.Errorf("legal documents not loaded yet; list them in the corpus manifest: %w", err)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("context not found, upload the file first with --file: %w", err)
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("no LLM available, run 'lexis settings llm': %w", err)
	default:
		return err
	}
}
