package document

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// FileInfo describes a certificate PDF found in the sandbox
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ListFiles walks the sandbox and returns every PDF whose name contains query
// (case-insensitive; empty matches all), newest first. Entries that cannot be
// read are skipped.
func (s *Service) ListFiles(ctx context.Context, query string) ([]FileInfo, error) {
	root := s.sandbox.Root()
	query = strings.ToLower(strings.TrimSpace(query))

	var files []FileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !s.sandbox.Contains(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".pdf") {
			return nil
		}
		if query != "" && !strings.Contains(strings.ToLower(d.Name()), query) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished during the walk
		}
		files = append(files, FileInfo{
			Path:         path,
			Name:         d.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format(time.RFC3339),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModifiedTime > files[j].ModifiedTime
	})
	return files, nil
}
