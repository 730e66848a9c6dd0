package interfaces

import (
	"context"
	"time"

	"github.com/Esysc/ansible-ws-logging/internal/models"
)

// CatalogService lists the recognized log files in the watched
// directory, ordered by modification time descending.
type CatalogService interface {
	List() []models.FileListEntry
}

// ContentService reads the full decoded text of one file. Failures are
// folded into the returned string; there is no error channel.
type ContentService interface {
	Read(path string) string
}

// SnapshotSource produces the per-tick view of the watched directory.
// The polling implementation is the default; an OS-notification-backed
// source can be added behind the same interface.
type SnapshotSource interface {
	// Snapshot returns the recognized-suffix paths currently present.
	// Listing failures yield an empty slice.
	Snapshot() []string

	// ModTime stats a single path.
	ModTime(path string) (time.Time, error)
}

// Monitor is a long-lived background loop, started at most once for the
// process lifetime and stopped by cancelling the context.
type Monitor interface {
	Run(ctx context.Context)
}
