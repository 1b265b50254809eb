package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jnalv414/my-second-brain/pkg/adapters/fs"
	"github.com/jnalv414/my-second-brain/pkg/core"
)

func setupStore(t *testing.T, mutate ...func(*core.StoreConfig)) (*core.Store, string) {
	t.Helper()

	guard, root := newGuard(t)
	cfg := core.StoreConfig{
		Guard:   guard,
		Storage: fs.NewStorage(fs.Config{}),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return core.NewStore(cfg), root
}

func writeRaw(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
}

// droppingStorage accepts writes without persisting them.
type droppingStorage struct {
	core.Storage
}

func (droppingStorage) WriteFile(context.Context, string, []byte) error { return nil }

func TestStore_Read(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t)

	t.Run("Parses Frontmatter", func(t *testing.T) {
		writeRaw(t, root, "folder/Note One.md", "---\ntitle: First\ntags: [a, b]\nstatus: draft\n---\nBody text")

		note, err := store.Read(ctx, "folder/Note One.md")
		require.NoError(t, err)
		require.NotNil(t, note)

		assert.Equal(t, "folder/Note One.md", note.Path)
		assert.Equal(t, "First", note.Title)
		assert.Equal(t, "Body text", note.Content)
		assert.Equal(t, []string{"a", "b"}, note.Metadata.Tags)
		assert.Equal(t, "draft", note.Metadata.Extra["status"])
		assert.False(t, note.ModifiedAt.IsZero())
	})

	t.Run("Title Falls Back to Stem", func(t *testing.T) {
		writeRaw(t, root, "Plain Note.md", "no frontmatter here")

		note, err := store.Read(ctx, "Plain Note.md")
		require.NoError(t, err)
		require.NotNil(t, note)
		assert.Equal(t, "Plain Note", note.Title)
		assert.Equal(t, "no frontmatter here", note.Content)
	})

	t.Run("Missing Is Absent", func(t *testing.T) {
		note, err := store.Read(ctx, "ghost.md")
		require.NoError(t, err)
		assert.Nil(t, note)
	})

	t.Run("Directory Is Absent", func(t *testing.T) {
		note, err := store.Read(ctx, "folder")
		require.NoError(t, err)
		assert.Nil(t, note)
	})

	t.Run("Decode Failure Is Absent", func(t *testing.T) {
		writeRaw(t, root, "broken.md", "---\ntitle: [oops\n---\nbody")

		note, err := store.Read(ctx, "broken.md")
		require.NoError(t, err)
		assert.Nil(t, note)
	})

	t.Run("Invalid UTF-8 Is Absent", func(t *testing.T) {
		writeRaw(t, root, "binary.md", "\xff\xfe\x00bad")

		note, err := store.Read(ctx, "binary.md")
		require.NoError(t, err)
		assert.Nil(t, note)
	})

	t.Run("Traversal Fails", func(t *testing.T) {
		_, err := store.Read(ctx, "../outside.md")
		assert.ErrorIs(t, err, core.ErrPathTraversal)
	})
}

func TestStore_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Directories and Returns Canonical Note", func(t *testing.T) {
		store, root := setupStore(t)

		note, err := store.Write(ctx, "deep/nested/new.md", "# Hello\n", map[string]any{
			"title": "New",
			"tags":  []string{"x"},
		})
		require.NoError(t, err)
		require.NotNil(t, note)

		assert.Equal(t, "deep/nested/new.md", note.Path)
		assert.Equal(t, "New", note.Title)
		assert.Equal(t, "# Hello\n", note.Content)
		assert.Equal(t, []string{"x"}, note.Metadata.Tags)
		assert.FileExists(t, filepath.Join(root, "deep", "nested", "new.md"))
	})

	t.Run("Without Fields Writes Body Verbatim", func(t *testing.T) {
		store, root := setupStore(t)

		_, err := store.Write(ctx, "raw.md", "just text", nil)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(root, "raw.md"))
		require.NoError(t, err)
		assert.Equal(t, "just text", string(data))
	})

	t.Run("Overwrites", func(t *testing.T) {
		store, _ := setupStore(t)

		_, err := store.Write(ctx, "n.md", "v1", nil)
		require.NoError(t, err)
		note, err := store.Write(ctx, "n.md", "v2", nil)
		require.NoError(t, err)
		assert.Equal(t, "v2", note.Content)
	})

	t.Run("Traversal Fails", func(t *testing.T) {
		store, root := setupStore(t)

		_, err := store.Write(ctx, "../../escape.md", "x", nil)
		assert.ErrorIs(t, err, core.ErrPathTraversal)
		assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "escape.md"))
	})

	t.Run("Refuses Root and Folders", func(t *testing.T) {
		store, root := setupStore(t)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "Projects"), 0755))

		_, err := store.Write(ctx, "", "x", nil)
		assert.ErrorIs(t, err, core.ErrNotANote)
		_, err = store.Write(ctx, ".", "x", nil)
		assert.ErrorIs(t, err, core.ErrNotANote)
		_, err = store.Write(ctx, "Projects", "x", nil)
		assert.ErrorIs(t, err, core.ErrNotANote)

		assert.DirExists(t, filepath.Join(root, "Projects"))
		for _, dir := range []string{filepath.Dir(root), root} {
			leftovers, err := filepath.Glob(filepath.Join(dir, fs.TempFilePrefix+"*"))
			require.NoError(t, err)
			assert.Empty(t, leftovers, "temp files left in %s", dir)
		}
	})

	t.Run("Lost Write Is an Internal Consistency Failure", func(t *testing.T) {
		store, _ := setupStore(t, func(c *core.StoreConfig) {
			c.Storage = droppingStorage{Storage: c.Storage}
		})

		_, err := store.Write(ctx, "vanished.md", "x", nil)
		assert.ErrorIs(t, err, core.ErrInternalConsistency)
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t)
	writeRaw(t, root, "gone.md", "bye")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.md"), 0755))

	deleted, err := store.Delete(ctx, "gone.md")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoFileExists(t, filepath.Join(root, "gone.md"))

	deleted, err = store.Delete(ctx, "gone.md")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = store.Delete(ctx, "dir.md")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = store.Delete(ctx, "../x.md")
	assert.ErrorIs(t, err, core.ErrPathTraversal)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t)

	for _, p := range []string{"b.md", "a.md", "sub/c.md", "sub/.hidden.md", ".secret.md", "sub/deep/d.md", "notes.txt", ".obsidian/workspace.md"} {
		writeRaw(t, root, p, "x")
	}

	t.Run("Whole Vault Sorted", func(t *testing.T) {
		paths, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{".obsidian/workspace.md", "a.md", "b.md", "sub/c.md", "sub/deep/d.md"}, paths)
	})

	t.Run("Folder", func(t *testing.T) {
		paths, err := store.List(ctx, "sub")
		require.NoError(t, err)
		assert.Equal(t, []string{"sub/c.md", "sub/deep/d.md"}, paths)
	})

	t.Run("Missing Folder Is Empty", func(t *testing.T) {
		paths, err := store.List(ctx, "nowhere")
		require.NoError(t, err)
		assert.NotNil(t, paths)
		assert.Empty(t, paths)
	})

	t.Run("Traversal Fails", func(t *testing.T) {
		_, err := store.List(ctx, "../")
		assert.ErrorIs(t, err, core.ErrPathTraversal)
	})
}

func TestStore_Scan(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store, root := setupStore(t, func(c *core.StoreConfig) { c.ScanWorkers = 2 })

	writeRaw(t, root, "c.md", "three")
	writeRaw(t, root, "a.md", "one")
	writeRaw(t, root, "b.md", "---\ntitle: [bad\n---\n")
	writeRaw(t, root, "d/e.md", "five")

	notes, err := store.Scan(ctx)
	require.NoError(t, err)

	var paths []string
	for _, n := range notes {
		paths = append(paths, n.Path)
	}
	assert.Equal(t, []string{"a.md", "c.md", "d/e.md"}, paths)
}

func TestStore_Cache(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t, func(c *core.StoreConfig) { c.Cache = true })

	_, err := store.Write(ctx, "cached.md", "first", nil)
	require.NoError(t, err)

	note, err := store.Read(ctx, "cached.md")
	require.NoError(t, err)
	assert.Equal(t, "first", note.Content)

	state := store.State().(core.StoreState)
	assert.True(t, state.CacheEnabled)
	assert.Equal(t, 1, state.CacheSize)
	assert.Equal(t, "filesystem", state.StorageType)

	// An external edit changes the fingerprint and must not be served stale.
	writeRaw(t, root, "cached.md", "second, and longer")
	note, err = store.Read(ctx, "cached.md")
	require.NoError(t, err)
	assert.Equal(t, "second, and longer", note.Content)

	deleted, err := store.Delete(ctx, "cached.md")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, store.State().(core.StoreState).CacheSize)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "Note One", core.Stem("folder/Note One.md"))
	assert.Equal(t, "archive.tar", core.Stem("archive.tar.gz"))
	assert.Equal(t, "plain", core.Stem("plain"))
}
