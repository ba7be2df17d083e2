package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAskExisting answers from excerpts of the predefined corpora.
	// The template expects %s (excerpts) then %s (question).
	PromptAskExisting = "ask_existing"

	// PromptAskUpload answers from excerpts of an uploaded document.
	// The template expects %s (excerpts) then %s (question).
	PromptAskUpload = "ask_upload"

	// PromptDefendCase drafts a defense strategy.
	// The template expects %s (case content).
	PromptDefendCase = "defend_case"

	// PromptChat is the general assistant prompt without retrieval.
	// The template expects %s (question).
	PromptChat = "chat"
)
