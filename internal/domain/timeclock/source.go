package timeclock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DirSource reads every export matching Pattern under Dir in name order.
// It stops reading once ctx is done and returns what it has.
type DirSource struct {
	Dir     string
	Pattern string
}

func (s DirSource) Fetch(ctx context.Context) ([]File, error) {
	pattern := s.Pattern
	if pattern == "" {
		pattern = "*.txt"
	}
	paths, err := filepath.Glob(filepath.Join(s.Dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob archive: %w", err)
	}
	sort.Strings(paths)

	files := make([]File, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return files, nil
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		files = append(files, File{Name: filepath.Base(path), Content: content})
	}
	return files, nil
}

// IngestSource fetches from src and ingests what it returned.
func (in *Ingestor) IngestSource(ctx context.Context, src Source) (Result, error) {
	files, err := src.Fetch(ctx)
	if err != nil {
		return Result{Errors: []string{err.Error()}}, err
	}
	return in.Ingest(ctx, files)
}
