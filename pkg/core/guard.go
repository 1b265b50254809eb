package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// PathGuard resolves vault-relative paths and rejects any that escape the root.
type PathGuard struct {
	root string
}

// NewPathGuard canonicalizes root and checks that it is an existing directory.
func NewPathGuard(root string) (*PathGuard, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrVaultNotFound, abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, abs)
	}

	return &PathGuard{root: resolved}, nil
}

// Root returns the canonical vault root.
func (g *PathGuard) Root() string {
	return g.root
}

// Validate returns the canonical absolute path for relativePath.
// The empty string resolves to the root itself. Absolute inputs are taken
// as-is and must still land inside the root.
func (g *PathGuard) Validate(relativePath string) (string, error) {
	candidate := relativePath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(g.root, filepath.FromSlash(relativePath))
	}

	resolved, err := canonicalize(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, relativePath)
	}

	if !g.contains(resolved) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, relativePath)
	}
	return resolved, nil
}

// Rel converts a validated absolute path back to its slash-separated
// vault-relative form.
func (g *PathGuard) Rel(absolutePath string) (string, error) {
	rel, err := filepath.Rel(g.root, absolutePath)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

func (g *PathGuard) contains(path string) bool {
	if path == g.root {
		return true
	}
	prefix := g.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// canonicalize cleans path and resolves symlinks along its longest existing
// prefix; the non-existent tail is appended lexically.
func canonicalize(path string) (string, error) {
	path = filepath.Clean(path)

	existing := path
	var tail []string
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			parts := append([]string{resolved}, tail...)
			return filepath.Join(parts...), nil
		}
		// Missing components and files used as directories both end the
		// resolvable prefix.
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return "", err
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			return path, nil
		}
		tail = append([]string{filepath.Base(existing)}, tail...)
		existing = parent
	}
}
