package core

import "errors"

// Common errors.
var (
	// ErrPathTraversal is returned when a path resolves outside the vault root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrVaultNotFound is returned when the vault root does not exist.
	ErrVaultNotFound = errors.New("vault path does not exist")

	// ErrDecode marks a note whose text or metadata block cannot be decoded.
	ErrDecode = errors.New("failed to decode note")

	// ErrInternalConsistency means a write succeeded but the note could not be read back.
	ErrInternalConsistency = errors.New("failed to read note after writing")

	ErrWatchUnavailable = errors.New("vault has no watcher configured")

	// ErrNotANote is returned when a write targets the vault root or a folder.
	ErrNotANote = errors.New("path is a folder, not a note")

	// ErrNoteExists is returned when a rename would overwrite another note.
	ErrNoteExists = errors.New("note already exists")
)
