// Package app assembles the core services from settings.
package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/custodia-labs/lexis/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexis/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/lexis/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/services"
	"github.com/custodia-labs/lexis/internal/logger"
	"github.com/custodia-labs/lexis/internal/normalisers"
	"github.com/custodia-labs/lexis/internal/normalisers/cloudocr"
	"github.com/custodia-labs/lexis/internal/normalisers/docx"
	"github.com/custodia-labs/lexis/internal/normalisers/html"
	"github.com/custodia-labs/lexis/internal/normalisers/markdown"
	"github.com/custodia-labs/lexis/internal/normalisers/ocr"
	"github.com/custodia-labs/lexis/internal/normalisers/pdf"
	"github.com/custodia-labs/lexis/internal/normalisers/pdfparse"
	"github.com/custodia-labs/lexis/internal/normalisers/plaintext"
	"github.com/custodia-labs/lexis/internal/postprocessors/answer"
	"github.com/custodia-labs/lexis/internal/postprocessors/chunker"
)

// App holds the wired services and the resources behind them.
type App struct {
	Settings    *domain.AppSettings
	Ask         *services.AskService
	Corpora     *services.CorpusService
	Definitions []domain.CorpusDefinition
	Warnings    []string

	ai    *ai.InitResult
	store driven.IndexStore
}

// Deps lets callers supply pre-built AI services instead of creating them
// from settings.
type Deps struct {
	AI    *ai.InitResult
	Store driven.IndexStore
}

// New wires the application from settings. configDir holds prompts and,
// unless settings override it, the persisted indexes.
func New(settings *domain.AppSettings, configDir string) (*App, error) {
	aiServices, err := ai.Initialise(settings)
	if err != nil {
		return nil, err
	}

	indexDir := settings.Storage.IndexDir
	if indexDir == "" {
		indexDir = filepath.Join(configDir, "indexes")
	}
	store, err := sqlite.NewStore(indexDir)
	if err != nil {
		aiServices.Close()
		return nil, fmt.Errorf("open index store: %w", err)
	}

	a, err := NewWith(settings, configDir, Deps{AI: aiServices, Store: store})
	if err != nil {
		aiServices.Close()
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// NewWith wires the application around the given AI services and store.
func NewWith(settings *domain.AppSettings, configDir string, deps Deps) (*App, error) {
	if deps.AI == nil || deps.AI.EmbeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompt store: %w", err)
	}

	defs, err := loadDefinitions(settings.Storage.CorpusManifest)
	if err != nil {
		return nil, err
	}

	extractor := NewExtractor(settings, deps.AI.Transcriber)
	cache := services.NewIndexCache(deps.Store, deps.AI.EmbeddingService, vectormem.Factory)
	corpora := services.NewCorpusService(cache, extractor, chunker.New())

	ask := services.NewAskService(corpora, services.NewAggregator(), extractor,
		deps.AI.LLMService, prompts, answer.Normaliser{})

	warnings := append(slices.Clone(deps.AI.Warnings), toolWarnings(settings)...)
	for _, w := range warnings {
		logger.Warn("%s", w)
	}

	return &App{
		Settings:    settings,
		Ask:         ask,
		Corpora:     corpora,
		Definitions: defs,
		Warnings:    warnings,
		ai:          deps.AI,
		store:       deps.Store,
	}, nil
}

// toolWarnings reports missing extraction binaries. The chain still
// works without them through the pure-Go PDF parser.
func toolWarnings(settings *domain.AppSettings) []string {
	if err := pdf.CheckAvailable(settings.OCR.PopplerPath); err != nil {
		logger.Debug("%s", pdf.InstallInstructions())
		return []string{fmt.Sprintf("%v; PDFs without pdftotext use the built-in parser", err)}
	}
	return nil
}

// NewExtractor builds the extraction chain the settings enable. Cloud OCR
// joins the chain only when a transcriber is available.
func NewExtractor(settings *domain.AppSettings, transcriber driven.Transcriber) *normalisers.Chain {
	strategies := []driven.Normaliser{
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(settings.OCR.PopplerPath),
		pdfparse.New(),
	}
	if settings.OCR.Enabled {
		strategies = append(strategies, ocr.New(ocr.Config{
			TesseractPath: settings.OCR.TesseractPath,
			PopplerPath:   settings.OCR.PopplerPath,
			Language:      settings.OCR.Language,
			DPI:           settings.OCR.DPI,
		}))
	}
	if transcriber != nil {
		strategies = append(strategies, cloudocr.New(transcriber))
	}
	return normalisers.NewChain(strategies)
}

// loadDefinitions reads the corpus manifest. A missing manifest means no
// predefined corpora.
func loadDefinitions(path string) ([]domain.CorpusDefinition, error) {
	if path == "" {
		return nil, nil
	}
	defs, err := file.LoadCorpusManifest(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no corpus manifest at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load corpus manifest: %w", err)
	}
	return defs, nil
}

// Close releases the AI clients and the index store.
func (a *App) Close() error {
	if a.ai != nil {
		a.ai.Close()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
