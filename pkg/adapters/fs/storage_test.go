package fs_test

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnalv414/my-second-brain/pkg/adapters/fs"
)

func TestStorage_WriteFile(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Parent Directories", func(t *testing.T) {
		root := t.TempDir()
		s := fs.NewStorage(fs.Config{})

		target := filepath.Join(root, "a", "b", "note.md")
		require.NoError(t, s.WriteFile(ctx, target, []byte("# Note")))

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "# Note", string(got))
	})

	t.Run("Round Trips Exact Bytes", func(t *testing.T) {
		root := t.TempDir()
		s := fs.NewStorage(fs.Config{})

		data := []byte("line one\r\nline two\n\n  trailing  ")
		target := filepath.Join(root, "raw.md")
		require.NoError(t, s.WriteFile(ctx, target, data))

		got, err := s.ReadFile(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("Honors Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		s := fs.NewStorage(fs.Config{})
		err := s.WriteFile(cctx, filepath.Join(t.TempDir(), "x.md"), []byte("x"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStorage_StatAndRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := fs.NewStorage(fs.Config{})

	target := filepath.Join(root, "note.md")
	require.NoError(t, s.WriteFile(ctx, target, []byte("12345")))

	info, err := s.Stat(ctx, target)
	require.NoError(t, err)
	assert.False(t, info.IsDir)
	assert.Equal(t, int64(5), info.Size)

	dirInfo, err := s.Stat(ctx, root)
	require.NoError(t, err)
	assert.True(t, dirInfo.IsDir)

	require.NoError(t, s.Remove(ctx, target))

	_, err = s.Stat(ctx, target)
	assert.True(t, errors.Is(err, iofs.ErrNotExist))

	err = s.Remove(ctx, target)
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
}

func TestStorage_Walk(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := fs.NewStorage(fs.Config{})

	for _, p := range []string{"a.md", "sub/b.md", "sub/deep/c.md", "d.txt", ".hidden/e.md"} {
		require.NoError(t, s.WriteFile(ctx, filepath.Join(root, filepath.FromSlash(p)), []byte(p)))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.md"), 0755))

	matches, err := s.Walk(ctx, root, "**/*.md")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.md", "sub/b.md", "sub/deep/c.md", ".hidden/e.md"}, matches)

	state, ok := s.State().(fs.StorageState)
	require.True(t, ok)
	assert.Equal(t, int64(5), state.Writes)
	assert.Equal(t, int64(1), state.Walks)
}
