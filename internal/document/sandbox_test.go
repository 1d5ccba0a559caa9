package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symlinkOrSkip(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

func TestSandbox_ResolveInside(t *testing.T) {
	root := t.TempDir()
	sb, err := NewSandbox(root)
	require.NoError(t, err)

	got, err := sb.Resolve("2024/crf.pdf")
	require.NoError(t, err, "missing files inside the root still resolve")
	assert.Equal(t, filepath.Join(root, "2024", "crf.pdf"), got)

	_, err = sb.Resolve("../crf.pdf")
	assert.True(t, errors.Is(err, ErrOutsideDirectory), "got %v", err)

	_, err = sb.Resolve("")
	assert.Error(t, err)
}

func TestSandbox_SymlinkedDirectory(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "secret.pdf", buildPDF("secret"))
	symlinkOrSkip(t, outside, filepath.Join(root, "link"))

	sb, err := NewSandbox(root)
	require.NoError(t, err)

	for _, path := range []string{"link/secret.pdf", "link/not-there.pdf", "link"} {
		_, err := sb.Resolve(path)
		assert.True(t, errors.Is(err, ErrOutsideDirectory), "%s: got %v", path, err)
	}
}

func TestSandbox_SymlinkInsideRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "archive/crf.pdf", buildPDF("crf"))
	symlinkOrSkip(t, filepath.Join(root, "archive"), filepath.Join(root, "current"))

	sb, err := NewSandbox(root)
	require.NoError(t, err)

	_, err = sb.Resolve("current/crf.pdf")
	assert.NoError(t, err)
}

func TestSandbox_DanglingSymlink(t *testing.T) {
	root := t.TempDir()
	symlinkOrSkip(t, filepath.Join(t.TempDir(), "gone"), filepath.Join(root, "dangling.pdf"))

	sb, err := NewSandbox(root)
	require.NoError(t, err)

	_, err = sb.Resolve("dangling.pdf")
	assert.True(t, errors.Is(err, ErrOutsideDirectory), "got %v", err)
}

func TestService_SymlinkedDirectoryIsNotReadable(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, outside, "secret.pdf", buildPDF(fgtsLines...))

	svc, dir := newTestService(t)
	symlinkOrSkip(t, outside, filepath.Join(dir, "shared"))

	_, err := svc.ExtractFile(context.Background(), "shared/secret.pdf", "")
	assert.True(t, errors.Is(err, ErrOutsideDirectory), "got %v", err)

	files, err := svc.ListFiles(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}
