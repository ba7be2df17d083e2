package sqlite

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

const (
	fileExt    = ".db"
	tempMarker = ".tmp-"
	driverName = "sqlite"
)

// Store keeps one SQLite database per corpus in a directory.
type Store struct {
	dir string
}

type corpusRow struct {
	Key        string `db:"key"`
	Name       string `db:"name"`
	Kind       string `db:"kind"`
	Passages   int    `db:"passages"`
	Model      string `db:"model"`
	Dimensions int    `db:"dimensions"`
	CreatedAt  string `db:"created_at"`
}

type passageRow struct {
	ID        string `db:"id"`
	Source    string `db:"source"`
	Position  int    `db:"position"`
	Text      string `db:"text"`
	Embedding []byte `db:"embedding"`
}

// NewStore creates a store rooted at dir.
// If dir is empty, defaults to ~/.lexis/indexes.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".lexis", "indexes")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the index files.
func (s *Store) Dir() string {
	return s.dir
}

// Close is a no-op; databases are opened per operation.
func (s *Store) Close() error {
	return nil
}

// pathFor returns the database file for key.
func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileExt)
}

// Save writes the snapshot to a temporary database and renames it over
// the corpus file.
func (s *Store) Save(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil || snapshot.Corpus.Key == "" {
		return fmt.Errorf("%w: snapshot without key", domain.ErrInvalidInput)
	}

	target := s.pathFor(snapshot.Corpus.Key)
	tmp := target + tempMarker + uuid.NewString()
	if err := writeSnapshot(ctx, tmp, snapshot); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing index %s: %w", snapshot.Corpus.Key, err)
	}
	logger.Debug("sqlite: saved %s (%d passages)", snapshot.Corpus.Key, len(snapshot.Entries))
	return nil
}

func writeSnapshot(ctx context.Context, path string, snapshot *domain.IndexSnapshot) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	c := snapshot.Corpus
	row := corpusRow{
		Key:        c.Key,
		Name:       c.Name,
		Kind:       c.Kind.String(),
		Passages:   len(snapshot.Entries),
		Model:      c.Model,
		Dimensions: c.Dimensions,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO corpus (key, name, kind, passages, model, dimensions, created_at)
		VALUES (:key, :name, :kind, :passages, :model, :dimensions, :created_at)
	`, row); err != nil {
		return fmt.Errorf("saving corpus: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO passages (id, source, position, text, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range snapshot.Entries {
		p := e.Passage
		if _, err := stmt.ExecContext(ctx, p.ID, p.Source, p.Position, p.Text, float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("saving passage %d: %w", p.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load reads the snapshot stored under key.
func (s *Store) Load(ctx context.Context, key string) (*domain.IndexSnapshot, error) {
	path := s.pathFor(key)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("index %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat index %s: %w", key, err)
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	corpus, err := readCorpus(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", key, err)
	}

	var rows []passageRow
	if err := db.SelectContext(ctx, &rows, `
		SELECT id, source, position, text, embedding
		FROM passages ORDER BY position
	`); err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}

	entries := make([]domain.IndexedPassage, len(rows))
	for i, r := range rows {
		entries[i] = domain.IndexedPassage{
			Passage: domain.Passage{
				ID:       r.ID,
				Source:   r.Source,
				Text:     r.Text,
				Position: r.Position,
			},
			Embedding: bytesToFloat32Slice(r.Embedding),
		}
	}
	return &domain.IndexSnapshot{Corpus: corpus, Entries: entries}, nil
}

// Delete removes the index stored under key.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.pathFor(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("index %s: %w", key, domain.ErrNotFound)
		}
		return fmt.Errorf("deleting index %s: %w", key, err)
	}
	return nil
}

// List returns the corpus metadata of every stored index, sorted by key.
// Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]domain.Corpus, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading index directory: %w", err)
	}

	var corpora []domain.Corpus //nolint:prealloc // unreadable files are skipped
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || strings.Contains(name, tempMarker) {
			continue
		}
		corpus, err := readCorpusFile(ctx, filepath.Join(s.dir, name))
		if err != nil {
			logger.Warn("sqlite: skipping %s: %v", name, err)
			continue
		}
		corpora = append(corpora, corpus)
	}

	sort.Slice(corpora, func(i, j int) bool {
		return corpora[i].Key < corpora[j].Key
	})
	return corpora, nil
}

func readCorpusFile(ctx context.Context, path string) (domain.Corpus, error) {
	db, err := open(path)
	if err != nil {
		return domain.Corpus{}, err
	}
	defer db.Close()
	return readCorpus(ctx, db)
}

func readCorpus(ctx context.Context, db *sqlx.DB) (domain.Corpus, error) {
	var row corpusRow
	if err := db.GetContext(ctx, &row, `
		SELECT key, name, kind, passages, model, dimensions, created_at
		FROM corpus LIMIT 1
	`); err != nil {
		return domain.Corpus{}, fmt.Errorf("reading corpus: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return domain.Corpus{
		Key:        row.Key,
		Name:       row.Name,
		Kind:       domain.CorpusKind(row.Kind),
		Passages:   row.Passages,
		Model:      row.Model,
		Dimensions: row.Dimensions,
		CreatedAt:  createdAt,
	}, nil
}

func open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// migrate runs all pending migrations.
func migrate(db *sqlx.DB, fsys fs.FS) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	upFiles, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// float32SliceToBytes encodes a vector as little-endian IEEE 754 values.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a vector written by float32SliceToBytes.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
