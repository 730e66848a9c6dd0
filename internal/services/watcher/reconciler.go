package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/interfaces"
	"github.com/Esysc/ansible-ws-logging/internal/models"
)

// Event names pushed through the Notifier.
const (
	EventFileList         = "file_list"
	EventFileContent      = "file_content"
	EventFileContentError = "file_content_error"
)

const plainSuffix = ".log"

// Reconciler polls the watched directory and pushes file-list and
// content updates through the Notifier, exactly once per observed
// change. The tracked mtime map is owned exclusively by the loop.
type Reconciler struct {
	dir      string
	interval time.Duration
	source   interfaces.SnapshotSource
	catalog  interfaces.CatalogService
	content  interfaces.ContentService
	notifier interfaces.Notifier
	logger   arbor.ILogger

	mtimes map[string]time.Time
}

// NewReconciler wires a reconciler over the watched directory.
func NewReconciler(
	dir string,
	interval time.Duration,
	source interfaces.SnapshotSource,
	catalog interfaces.CatalogService,
	content interfaces.ContentService,
	notifier interfaces.Notifier,
	logger arbor.ILogger,
) *Reconciler {
	return &Reconciler{
		dir:      dir,
		interval: interval,
		source:   source,
		catalog:  catalog,
		content:  content,
		notifier: notifier,
		logger:   logger,
		mtimes:   make(map[string]time.Time),
	}
}

// Run executes the reconciliation loop until ctx is cancelled. Nothing
// observed during a tick may terminate the loop; per-tick failures are
// logged and the next tick proceeds.
func (r *Reconciler) Run(ctx context.Context) {
	if _, err := os.Stat(r.dir); err != nil {
		// Non-crashing contract: keep polling so the directory can
		// appear later without a restart.
		r.logger.Warn().Str("dir", r.dir).Msg("Watched directory does not exist")
	}

	// Seed tracked state so startup does not replay the whole directory
	// as modifications.
	for _, path := range r.source.Snapshot() {
		if mt, err := r.source.ModTime(path); err == nil {
			r.mtimes[path] = mt
		}
	}

	r.logger.Info().
		Str("dir", r.dir).
		Dur("interval", r.interval).
		Int("tracked", len(r.mtimes)).
		Msg("Log monitor started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Log monitor stopped")
			return
		case <-ticker.C:
			r.safeTick()
		}
	}
}

// safeTick isolates the loop from panics in a single tick.
func (r *Reconciler) safeTick() {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("panic", fmt.Sprintf("%v", rec)).Msg("Recovered from monitor tick panic")
		}
	}()
	r.tick()
}

// tick performs one reconciliation pass: list changes first, then
// content changes for paths still present.
func (r *Reconciler) tick() {
	current := r.source.Snapshot()
	currentSet := make(map[string]bool, len(current))
	for _, path := range current {
		currentSet[path] = true
	}

	var added, removed []string
	for _, path := range current {
		if _, ok := r.mtimes[path]; !ok {
			added = append(added, path)
		}
	}
	for path := range r.mtimes {
		if !currentSet[path] {
			removed = append(removed, path)
		}
	}

	newThisTick := make(map[string]bool, len(added))
	if len(added) > 0 || len(removed) > 0 {
		for _, path := range added {
			newThisTick[path] = true
			mt, err := r.source.ModTime(path)
			if err != nil {
				// Stat race on a brand new file: keep the entry with a
				// zero-time sentinel instead of dropping it.
				mt = time.Time{}
			}
			r.mtimes[path] = mt
		}
		for _, path := range removed {
			delete(r.mtimes, path)
		}

		// Recomputed via the catalog so ordering and filtering stay
		// centralized there.
		r.notifier.Broadcast(EventFileList, r.catalog.List())
		r.logger.Debug().
			Int("added", len(added)).
			Int("removed", len(removed)).
			Msg("File list updated")
	}

	for _, path := range current {
		mt, err := r.source.ModTime(path)
		if err != nil {
			// File deleted between listing and stat; the next tick
			// reports the removal.
			delete(r.mtimes, path)
			continue
		}

		last, tracked := r.mtimes[path]
		if tracked && !mt.After(last) && !newThisTick[path] {
			continue
		}
		r.mtimes[path] = mt

		// Compressed archives are listed but never live-tailed.
		if !strings.HasSuffix(path, plainSuffix) {
			continue
		}

		name := filepath.Base(path)
		r.notifier.Broadcast(EventFileContent, models.ContentMessage{
			Name:    name,
			Content: r.content.Read(path),
		})
		r.logger.Debug().Str("name", name).Msg("Emitted content update")
	}
}
