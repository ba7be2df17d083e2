package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// corpusManifest is the on-disk shape of corpora.yaml:
//
//	corpora:
//	  - name: Constitution of India
//	    path: data/constitution_of_india.pdf
type corpusManifest struct {
	Corpora []domain.CorpusDefinition `yaml:"corpora"`
}

// LoadCorpusManifest reads the predefined corpus list. Relative paths are
// resolved against the manifest's directory. Unknown keys, unnamed entries
// and duplicate names are errors.
func LoadCorpusManifest(path string) ([]domain.CorpusDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus manifest: %w", err)
	}

	var manifest corpusManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&manifest); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, path, err)
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool, len(manifest.Corpora))
	defs := make([]domain.CorpusDefinition, 0, len(manifest.Corpora))
	for i, def := range manifest.Corpora {
		def.Name = strings.TrimSpace(def.Name)
		def.Path = strings.TrimSpace(def.Path)
		switch {
		case def.Name == "":
			return nil, fmt.Errorf("%w: %s: corpus %d has no name", domain.ErrInvalidInput, path, i+1)
		case def.Path == "":
			return nil, fmt.Errorf("%w: %s: corpus %q has no path", domain.ErrInvalidInput, path, def.Name)
		case seen[def.Name]:
			return nil, fmt.Errorf("%w: %s: corpus %q listed twice", domain.ErrInvalidInput, path, def.Name)
		}
		seen[def.Name] = true

		if !filepath.IsAbs(def.Path) {
			def.Path = filepath.Join(base, def.Path)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
