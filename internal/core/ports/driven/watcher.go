package driven

import "context"

// FileWatcher monitors a directory for new or changed documents.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events until ctx is done.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

// File operations reported by a FileWatcher.
const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
