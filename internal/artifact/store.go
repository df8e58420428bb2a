// Package artifact persists generated report files on the local filesystem.
//
// Artifacts live under <base>/<context_id>/<filename>. Paths are fully
// deterministic so the poll endpoint can answer "does the report exist yet"
// without any bookkeeping beyond the filesystem itself.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/opencampus-hq/timereport/internal/models"
	"github.com/opencampus-hq/timereport/internal/report"
)

// Store is a filesystem-backed artifact store.
type Store struct {
	baseDir string
}

// NewStore creates the store, ensuring the base directory exists.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact base dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Path returns the absolute path of an artifact.
func (s *Store) Path(contextID int64, filename string) string {
	return filepath.Join(s.baseDir, strconv.FormatInt(contextID, 10), filename)
}

// Save writes an artifact, replacing any stale file at the same path first.
// Returns the absolute path of the written file.
func (s *Store) Save(contextID int64, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, strconv.FormatInt(contextID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(dir, filename)
	// Delete the old file first so a failed write never leaves stale data
	// being served as current.
	if err := s.Delete(contextID, filename); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// Exists reports whether an artifact is present.
func (s *Store) Exists(contextID int64, filename string) bool {
	info, err := os.Stat(s.Path(contextID, filename))
	return err == nil && !info.IsDir()
}

// Delete removes an artifact. Deleting a missing artifact is not an error.
func (s *Store) Delete(contextID int64, filename string) error {
	err := os.Remove(s.Path(contextID, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

// ListForUser returns the report artifacts belonging to one user within a
// context, matched on the deterministic filename prefix.
func (s *Store) ListForUser(contextID int64, username string) ([]models.ReportFile, error) {
	dir := filepath.Join(s.baseDir, strconv.FormatInt(contextID, 10))
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	prefix := userPrefix(username)
	var files []models.ReportFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, models.ReportFile{
			Filename:  entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return files, nil
}

// RemoveForUser deletes every report artifact of one user within a context.
func (s *Store) RemoveForUser(contextID int64, username string) error {
	files, err := s.ListForUser(contextID, username)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.Delete(contextID, f.Filename); err != nil {
			return err
		}
	}
	return nil
}

func userPrefix(username string) string {
	return "report__" + report.ToSnakeCase(username) + "__"
}
