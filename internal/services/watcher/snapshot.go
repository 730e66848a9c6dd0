package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/interfaces"
)

// recognizedSuffixes are the file name suffixes tracked by the monitor.
// *.log files are live-tailed; *.gz archives are listed only.
var recognizedSuffixes = []string{".log", ".gz"}

// PollingSource takes directory snapshots by listing the watched
// directory. It is the default SnapshotSource implementation.
type PollingSource struct {
	dir    string
	logger arbor.ILogger
}

// NewPollingSource creates a snapshot source over dir.
func NewPollingSource(dir string, logger arbor.ILogger) interfaces.SnapshotSource {
	return &PollingSource{
		dir:    dir,
		logger: logger,
	}
}

// Snapshot returns the recognized-suffix paths currently present in the
// watched directory. Subdirectories are not traversed. A listing
// failure (including a missing directory) yields an empty slice.
func (p *PollingSource) Snapshot() []string {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if hasRecognizedSuffix(entry.Name()) {
			paths = append(paths, filepath.Join(p.dir, entry.Name()))
		}
	}
	return paths
}

// ModTime stats a single path.
func (p *PollingSource) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func hasRecognizedSuffix(name string) bool {
	for _, suffix := range recognizedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
