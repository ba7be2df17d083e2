package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Inbox ingests documents dropped into a directory as ad hoc corpora.
type Inbox struct {
	corpora  driving.CorpusService
	watcher  driven.FileWatcher
	readFile func(string) ([]byte, error)
	readDir  func(string) ([]fs.DirEntry, error)
	accept   func(string) bool

	// ingested reports every successful ingestion; used by tests.
	ingested func(path string, corpus domain.Corpus)
}

// NewInbox creates an inbox over corpora fed by watcher.
func NewInbox(corpora driving.CorpusService, watcher driven.FileWatcher) *Inbox {
	return &Inbox{
		corpora:  corpora,
		watcher:  watcher,
		readFile: os.ReadFile,
		readDir:  os.ReadDir,
		accept:   supportedDocument,
	}
}

// Run ingests files already in dir, then every file created or modified
// there until ctx is done. Failures on single files are logged only.
func (b *Inbox) Run(ctx context.Context, dir string) error {
	events, err := b.watcher.Watch(ctx, dir)
	if err != nil {
		return err
	}
	defer b.watcher.Stop()

	logger.Info("inbox: watching %s", dir)
	if err := b.ingestExisting(ctx, dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Operation == driven.FileDeleted {
				logger.Debug("inbox: %s removed; its cached index is kept", ev.Path)
				continue
			}
			b.ingest(ctx, ev.Path)
		}
	}
}

func (b *Inbox) ingestExisting(ctx context.Context, dir string) error {
	entries, err := b.readDir(dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && b.accept(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	for _, name := range names {
		if ctx.Err() != nil {
			return nil
		}
		b.ingest(ctx, filepath.Join(dir, name))
	}
	return nil
}

func (b *Inbox) ingest(ctx context.Context, path string) {
	if !b.accept(path) {
		return
	}

	content, err := b.readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn("inbox: read %s: %v", path, err)
		return
	}

	corpus, err := b.corpora.Ingest(ctx, domain.NewRawDocument(filepath.Base(path), "", content))
	if err != nil {
		logger.Error("inbox: ingest %s: %v", path, err)
		return
	}
	logger.Info("inbox: %s -> %s (%d passages)", filepath.Base(path), corpus.Key, corpus.Passages)
	if b.ingested != nil {
		b.ingested(path, corpus)
	}
}

// supportedDocument reports whether the extension is one the extraction
// chain can handle. Hidden and partial download files are skipped.
func supportedDocument(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt", ".text", ".md", ".markdown", ".html", ".htm", ".docx":
		return true
	default:
		return false
	}
}
