package driving

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// AskService answers questions using retrieval and the configured LLM.
// Every returned answer has passed through the response normaliser.
type AskService interface {
	// AskExisting answers from whichever predefined corpus best matches query.
	AskExisting(ctx context.Context, query string) (domain.Answer, error)

	// AskUpload indexes raw (or reuses its cached index) and answers from it.
	AskUpload(ctx context.Context, query string, raw *domain.RawDocument) (domain.Answer, error)

	// AskContext answers from a previously uploaded document.
	// An unknown fileID returns domain.ErrNotFound.
	AskContext(ctx context.Context, query, fileID string) (domain.Answer, error)

	// DefendCase drafts a defense strategy from an uploaded case file or a
	// plain description. Exactly one of raw and description is used;
	// raw wins when both are set.
	DefendCase(ctx context.Context, raw *domain.RawDocument, description string) (domain.Answer, error)

	// Chat answers without retrieval.
	Chat(ctx context.Context, query string) (domain.Answer, error)
}
