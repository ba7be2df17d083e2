package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts/*.txt prompts/README.md
var embeddedPrompts embed.FS

// PromptStore loads LLM prompts from user-editable files on disk, falling
// back to the templates embedded in the binary.
//
// Files are only written on first Load, never in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.lexis/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// DefaultPrompt returns the embedded template for name.
func DefaultPrompt(name string) (string, error) {
	data, err := embeddedPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return strings.TrimSpace(string(data)), nil
}

// Load returns the prompt template for the given name.
// A user file whose placeholders differ from the default is ignored.
func (s *PromptStore) Load(name string) (string, error) {
	fallback, err := DefaultPrompt(name)
	if err != nil {
		return "", err
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return fallback, nil
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err = s.loadFromFile(name)
	switch {
	case err != nil:
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("prompt %s: %v; using built-in default", name, err)
		}
		prompt = fallback
	case placeholders(prompt) != placeholders(fallback):
		logger.Warn("prompt %s: expected %d %%s placeholders, found %d; using built-in default",
			name, placeholders(fallback), placeholders(prompt))
		prompt = fallback
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and copies missing defaults into it.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Warn("%v; using built-in prompts", s.initErr)
		return
	}

	entries, err := fs.ReadDir(embeddedPrompts, "prompts")
	if err != nil {
		s.initErr = err
		return
	}
	for _, entry := range entries {
		path := filepath.Join(s.promptDir, entry.Name())
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := embeddedPrompts.ReadFile("prompts/" + entry.Name())
		if err != nil {
			s.initErr = err
			return
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", entry.Name(), err)
			logger.Warn("%v; using built-in prompts", s.initErr)
			return
		}
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// placeholders counts %s verbs, skipping escaped percent signs.
func placeholders(template string) int {
	n := 0
	for i := 0; i < len(template)-1; i++ {
		if template[i] != '%' {
			continue
		}
		if template[i+1] == 's' {
			n++
		}
		i++
	}
	return n
}
