// Package brain is the Composition Root for a second-brain vault.
//
// It connects the note domain (guarded store, codec, link resolution and
// search) with the infrastructure adapters (local filesystem, fsnotify
// watcher) and exposes the result as a single vault.Service.
//
// A vault is a directory of Markdown notes with an optional YAML
// frontmatter block. Notes are identified by their slash-separated path
// relative to the vault root; no path may escape that root.
//
// Features:
//
//   - **Path Guard**: every path is canonicalized and checked against the root.
//   - **Frontmatter**: tags, aliases, created, modified and title are
//     recognized; everything else is preserved as extra metadata.
//   - **Wikilinks**: [[target#heading|alias]] parsing, backlinks, outgoing
//     links and a full link graph.
//   - **Search**: term-scored full-text search with excerpts, plus fuzzy
//     note-name suggestions.
//   - **Typed frontmatter**: brain.Typed[T] decodes note metadata into a struct.
//   - **Watch**: a stream of CREATE/MODIFY/DELETE events for note files.
//
// Usage:
//
//	svc, err := brain.New("~/Documents/Obsidian",
//		brain.WithLogger(logger),
//		brain.WithCache(true),
//	)
//
//	note, err := svc.WriteNote(ctx, "inbox/idea.md", "See [[Project]]", map[string]any{
//		"tags": []string{"idea"},
//	})
package brain
