// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML settings under ~/.lexis/config.toml
//   - PromptStore: user-editable prompt templates with embedded defaults
//   - LoadCorpusManifest: the YAML list of predefined corpora
package file
