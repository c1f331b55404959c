package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	analyticsout "studytrack/internal/modules/analytics/port/out"
)

type FileJournalStore struct {
	dir string
}

func NewFileJournalStore(dir string) analyticsout.JournalStore {
	return &FileJournalStore{dir: dir}
}

func (s *FileJournalStore) path(day string) string {
	return filepath.Join(s.dir, day+".md")
}

func (s *FileJournalStore) Read(_ context.Context, day string) (string, bool, error) {
	b, err := os.ReadFile(s.path(day))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read journal note: %w", err)
	}
	return string(b), true, nil
}

func (s *FileJournalStore) Write(_ context.Context, day, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	path := s.path(day)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}
