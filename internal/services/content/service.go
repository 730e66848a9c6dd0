package content

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/interfaces"
)

const gzipSuffix = ".gz"

// Service reads whole-file text content, decompressing *.gz archives.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a content reader.
func NewService(logger arbor.ILogger) interfaces.ContentService {
	return &Service{logger: logger}
}

// Read returns the full decoded text of path. Invalid UTF-8 bytes are
// replaced rather than rejected. Any failure is folded into a content
// string of the form "Error reading file: <cause>" so callers never
// need a separate failure path.
func (s *Service) Read(path string) string {
	text, err := s.read(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Content read failed")
		return fmt.Sprintf("Error reading file: %v", err)
	}
	return text
}

func (s *Service) read(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, gzipSuffix) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
}
