package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

type fakeAsk struct {
	answer domain.Answer
	err    error

	method      string
	query       string
	fileID      string
	raw         *domain.RawDocument
	description string
}

func (f *fakeAsk) AskExisting(_ context.Context, query string) (domain.Answer, error) {
	f.method, f.query = "existing", query
	return f.answer, f.err
}

func (f *fakeAsk) AskUpload(_ context.Context, query string, raw *domain.RawDocument) (domain.Answer, error) {
	f.method, f.query, f.raw = "upload", query, raw
	return f.answer, f.err
}

func (f *fakeAsk) AskContext(_ context.Context, query, fileID string) (domain.Answer, error) {
	f.method, f.query, f.fileID = "context", query, fileID
	return f.answer, f.err
}

func (f *fakeAsk) DefendCase(_ context.Context, raw *domain.RawDocument, description string) (domain.Answer, error) {
	f.method, f.raw, f.description = "defend", raw, description
	return f.answer, f.err
}

func (f *fakeAsk) Chat(_ context.Context, query string) (domain.Answer, error) {
	f.method, f.query = "chat", query
	return f.answer, f.err
}

type fakeCorpora struct {
	corpora   []domain.Corpus
	ingestErr error
	preloaded []domain.CorpusDefinition
	ingested  []string
}

func (f *fakeCorpora) Preload(_ context.Context, defs []domain.CorpusDefinition) (int, error) {
	f.preloaded = defs
	return len(defs), nil
}

func (f *fakeCorpora) Ingest(_ context.Context, raw *domain.RawDocument) (domain.Corpus, error) {
	if f.ingestErr != nil {
		return domain.Corpus{}, f.ingestErr
	}
	f.ingested = append(f.ingested, raw.Name)
	return domain.Corpus{Key: raw.Fingerprint, Kind: domain.CorpusAdHoc, Passages: 2}, nil
}

func (f *fakeCorpora) Predefined() []domain.Corpus {
	return nil
}

func (f *fakeCorpora) List(_ context.Context) ([]domain.Corpus, error) {
	return f.corpora, nil
}

// useRuntime installs a loader returning ask and corpora for the test.
func useRuntime(t *testing.T, ask *fakeAsk, corpora *fakeCorpora, defs ...domain.CorpusDefinition) *bool {
	t.Helper()
	closed := new(bool)
	old := loadRuntime
	loadRuntime = func(context.Context) (*Runtime, error) {
		return &Runtime{
			Ask:         ask,
			Corpora:     corpora,
			Definitions: defs,
			Close: func() error {
				*closed = true
				return nil
			},
		}, nil
	}
	t.Cleanup(func() { loadRuntime = old })
	return closed
}

// execute runs the root command with args, resetting every flag first so
// values from earlier runs do not leak in.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
