package document

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sandbox confines file access to one directory tree
type Sandbox struct {
	root string
}

// NewSandbox creates a sandbox rooted at dir. The directory does not need to
// exist yet.
func NewSandbox(dir string) (*Sandbox, error) {
	if dir == "" {
		return nil, errors.New("sandbox directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve sandbox directory")
	}
	return &Sandbox{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute sandbox directory
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve turns path into an absolute path inside the sandbox. Relative paths
// are taken relative to the sandbox root. Symlinks are followed before the
// containment check.
func (s *Sandbox) Resolve(path string) (string, error) {
	if path == "" {
		return "", errors.New("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve path %s", path)
	}
	abs = filepath.Clean(abs)

	if !s.Contains(abs) {
		return "", errors.Wrapf(ErrOutsideDirectory, "%s", path)
	}
	return abs, nil
}

// Contains reports whether abs lives inside the sandbox both as written and
// once every symlink along it is resolved. For a path that does not exist yet
// the deepest existing ancestor is resolved.
func (s *Sandbox) Contains(abs string) bool {
	roots := []string{s.root}
	if real, err := filepath.EvalSymlinks(s.root); err == nil && real != s.root {
		roots = append(roots, real)
	}

	target, err := resolveExisting(abs)
	if err != nil {
		return false
	}
	return within(abs, roots) && within(target, roots)
}

// resolveExisting evaluates the symlinks of the longest existing prefix of
// abs and appends the missing components unchanged
func resolveExisting(abs string) (string, error) {
	cur, rest := abs, ""
	for {
		real, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(real, rest), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if _, lerr := os.Lstat(cur); lerr == nil {
			// a dangling link
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

func within(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
