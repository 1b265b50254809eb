package vault_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnalv414/my-second-brain/pkg/adapters/fs"
	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/vault"
)

func setupService(t *testing.T, withWatcher bool) (*vault.Service, string) {
	t.Helper()

	guard, err := core.NewPathGuard(t.TempDir())
	require.NoError(t, err)

	cfg := vault.Config{
		Store: core.NewStore(core.StoreConfig{Guard: guard, Storage: fs.NewStorage(fs.Config{})}),
	}
	if withWatcher {
		cfg.Watcher = fs.NewWatcher(fs.WatcherConfig{Root: guard.Root(), Debounce: 10 * time.Millisecond})
	}
	return vault.NewService(cfg), guard.Root()
}

func seedScenario(t *testing.T, svc *vault.Service) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.WriteNote(ctx, "note1.md", "This is note one. See [[note2]].", map[string]any{"title": "Note One"})
	require.NoError(t, err)
	_, err = svc.WriteNote(ctx, "note2.md", "Links to [[note1]] and [[project1]].", map[string]any{"title": "Note Two"})
	require.NoError(t, err)
	_, err = svc.WriteNote(ctx, "Projects/project1.md", "Refers to [[note1#Heading|alias link]].", map[string]any{"title": "Project One"})
	require.NoError(t, err)
}

func TestService_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, false)
	seedScenario(t, svc)

	t.Run("Write Then Read", func(t *testing.T) {
		note, err := svc.ReadNote(ctx, "note1.md")
		require.NoError(t, err)
		require.NotNil(t, note)
		assert.Equal(t, "Note One", note.Title)
		assert.Equal(t, "This is note one. See [[note2]].", note.Content)
	})

	t.Run("List", func(t *testing.T) {
		paths, err := svc.ListNotes(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Projects/project1.md", "note1.md", "note2.md"}, paths)
	})

	t.Run("Backlinks", func(t *testing.T) {
		refs, err := svc.GetBacklinks(ctx, "note1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []core.NoteRef{
			{Name: "Note Two", Path: "note2.md"},
			{Name: "Project One", Path: "Projects/project1.md"},
		}, refs)

		upper, err := svc.GetBacklinks(ctx, "NOTE1")
		require.NoError(t, err)
		assert.Len(t, upper, len(refs))
	})

	t.Run("Outgoing", func(t *testing.T) {
		refs, err := svc.GetOutgoingLinks(ctx, "note2.md")
		require.NoError(t, err)
		assert.Equal(t, []core.NoteRef{
			{Name: "note1", Path: "note1.md"},
			{Name: "project1", Path: "Projects/project1.md"},
		}, refs)
	})

	t.Run("Search", func(t *testing.T) {
		results, err := svc.SearchNotes(ctx, "One", 0)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "Note One", results[0].Note.Title)

		limited, err := svc.SearchNotes(ctx, "note", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("Extract", func(t *testing.T) {
		found := svc.ExtractLinks("[[A]] [[B#H]] [[C|X]] [[D#H|X]]")
		require.Len(t, found, 4)
		assert.Equal(t, "D", found[3].Target)
	})

	t.Run("Graph", func(t *testing.T) {
		g, err := svc.BuildGraph(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, g.Len())
		assert.Len(t, g.Backlinks("note1"), 2)
	})

	t.Run("Delete", func(t *testing.T) {
		deleted, err := svc.DeleteNote(ctx, "note2.md")
		require.NoError(t, err)
		assert.True(t, deleted)

		refs, err := svc.GetBacklinks(ctx, "note1")
		require.NoError(t, err)
		assert.Equal(t, []core.NoteRef{{Name: "Project One", Path: "Projects/project1.md"}}, refs)
	})

	t.Run("Traversal Everywhere", func(t *testing.T) {
		_, err := svc.ReadNote(ctx, "../x.md")
		assert.ErrorIs(t, err, core.ErrPathTraversal)
		_, err = svc.WriteNote(ctx, "../x.md", "x", nil)
		assert.ErrorIs(t, err, core.ErrPathTraversal)
		_, err = svc.DeleteNote(ctx, "../x.md")
		assert.ErrorIs(t, err, core.ErrPathTraversal)
		_, err = svc.ListNotes(ctx, "../")
		assert.ErrorIs(t, err, core.ErrPathTraversal)
		_, err = svc.GetOutgoingLinks(ctx, "../x.md")
		assert.ErrorIs(t, err, core.ErrPathTraversal)
	})
}

func TestService_RenameNote(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves Note and Rewrites Links", func(t *testing.T) {
		svc, root := setupService(t, false)
		seedScenario(t, svc)

		moved, rewritten, err := svc.RenameNote(ctx, "note1.md", "Archive/first.md")
		require.NoError(t, err)
		require.NotNil(t, moved)
		assert.Equal(t, "Archive/first.md", moved.Path)
		assert.Equal(t, "Note One", moved.Title)
		assert.Equal(t, 2, rewritten)
		assert.NoFileExists(t, filepath.Join(root, "note1.md"))

		note2, err := svc.ReadNote(ctx, "note2.md")
		require.NoError(t, err)
		assert.Equal(t, "Links to [[first]] and [[project1]].", note2.Content)
		assert.Equal(t, "Note Two", note2.Title)

		project, err := svc.ReadNote(ctx, "Projects/project1.md")
		require.NoError(t, err)
		assert.Equal(t, "Refers to [[first#Heading|alias link]].", project.Content)

		refs, err := svc.GetBacklinks(ctx, "first")
		require.NoError(t, err)
		assert.Len(t, refs, 2)
	})

	t.Run("Same Stem Only Moves", func(t *testing.T) {
		svc, _ := setupService(t, false)
		seedScenario(t, svc)

		moved, rewritten, err := svc.RenameNote(ctx, "note2.md", "Archive/note2.md")
		require.NoError(t, err)
		assert.Equal(t, "Archive/note2.md", moved.Path)
		assert.Zero(t, rewritten)
	})

	t.Run("Missing Source Is Absent", func(t *testing.T) {
		svc, _ := setupService(t, false)

		moved, rewritten, err := svc.RenameNote(ctx, "ghost.md", "other.md")
		require.NoError(t, err)
		assert.Nil(t, moved)
		assert.Zero(t, rewritten)
	})

	t.Run("Refuses to Overwrite", func(t *testing.T) {
		svc, _ := setupService(t, false)
		seedScenario(t, svc)

		_, _, err := svc.RenameNote(ctx, "note1.md", "note2.md")
		assert.ErrorIs(t, err, core.ErrNoteExists)

		note1, err := svc.ReadNote(ctx, "note1.md")
		require.NoError(t, err)
		assert.NotNil(t, note1)
	})

	t.Run("Traversal Fails", func(t *testing.T) {
		svc, _ := setupService(t, false)
		seedScenario(t, svc)

		_, _, err := svc.RenameNote(ctx, "note1.md", "../escape.md")
		assert.ErrorIs(t, err, core.ErrPathTraversal)
	})
}

func TestService_Watch(t *testing.T) {
	t.Run("Streams External Edits", func(t *testing.T) {
		svc, root := setupService(t, true)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := svc.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(root, "external.md"), []byte("x"), 0644))

		select {
		case e := <-events:
			assert.Equal(t, "external.md", e.Path)
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for watch event")
		}

		state := svc.State().(vault.ServiceState)
		assert.NotNil(t, state.Watcher)
	})

	t.Run("Unavailable Without Watcher", func(t *testing.T) {
		svc, _ := setupService(t, false)
		_, err := svc.Watch(context.Background())
		assert.ErrorIs(t, err, core.ErrWatchUnavailable)
	})
}

func TestService_State(t *testing.T) {
	svc, root := setupService(t, false)

	state, ok := svc.State().(vault.ServiceState)
	require.True(t, ok)
	assert.Equal(t, root, state.Root)
	assert.Equal(t, "service", svc.ComponentType())

	store, ok := state.Store.(core.StoreState)
	require.True(t, ok)
	assert.Equal(t, ".md", store.Extension)
	assert.Nil(t, state.Watcher)
}
