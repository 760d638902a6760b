package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/epeers/portfolio-tracker/internal/models"
)

var ErrNoArchivedSnapshot = errors.New("no archived snapshot")

// TransparencyService exposes the fingerprint of the newest archived positions
// export so published numbers can be traced to a file.
type TransparencyService struct {
	dir string
}

// NewTransparencyService creates a new TransparencyService over dir. An empty
// dir means archiving is disabled.
func NewTransparencyService(dir string) *TransparencyService {
	return &TransparencyService{dir: dir}
}

// LatestSnapshot hashes the last .csv in the archive directory by filename.
// Archived names start with the snapshot date, so that is also the newest.
func (s *TransparencyService) LatestSnapshot() (*models.SnapshotFileInfo, error) {
	if s.dir == "" {
		return nil, ErrNoArchivedSnapshot
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoArchivedSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, ErrNoArchivedSnapshot
	}
	sort.Strings(names)
	latest := names[len(names)-1]

	f, err := os.Open(filepath.Join(s.dir, latest))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return nil, fmt.Errorf("failed to hash snapshot: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	return &models.SnapshotFileInfo{
		Filename:   latest,
		SHA256:     hex.EncodeToString(h.Sum(nil)),
		SizeBytes:  size,
		ModifiedAt: info.ModTime().UTC(),
	}, nil
}

// Archive writes an uploaded export into the archive directory as
// "<as-of>_<original name>". It is a no-op when archiving is disabled.
func (s *TransparencyService) Archive(asOf, filename string, content []byte) (string, error) {
	if s.dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	name := asOf + "_" + filepath.Base(filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to archive snapshot: %w", err)
	}
	return name, nil
}
