// Package vault is the boundary to the document file store. Paths are
// slash-separated and relative to the workspace root. The store is freely
// editable outside the program; the watcher turns external edits into Events
// for the cache engine.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound marks a read/delete of a path that does not exist.
var ErrNotFound = errors.New("vault: file not found")

// Store is the file-store capability consumed by the cache engine.
type Store interface {
	Read(path string) (string, error)
	Write(path, content string) error
	// Create writes a new file and fails if the path already exists.
	Create(path, content string) error
	Delete(path string) error
	// List returns the .md files directly inside folder, sorted. A missing
	// folder lists as empty.
	List(folder string) ([]string, error)
	MkdirAll(folder string) error
}

// Op classifies a change event.
type Op int

const (
	OpCreated Op = iota
	OpModified
	OpDeleted
)

func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpDeleted:
		return "deleted"
	}
	return "unknown"
}

// Event is one external change to the file store.
type Event struct {
	Op   Op
	Path string
}

// OS is the real filesystem store rooted at a workspace directory.
type OS struct {
	root string
}

// NewOS creates a store rooted at root.
func NewOS(root string) *OS {
	return &OS{root: root}
}

// Root returns the workspace root directory.
func (o *OS) Root() string { return o.root }

func (o *OS) abs(path string) string {
	return filepath.Join(o.root, filepath.FromSlash(path))
}

// Read returns the file content at path.
func (o *OS) Read(path string) (string, error) {
	data, err := os.ReadFile(o.abs(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Write replaces the file content at path, creating parent folders as needed.
func (o *OS) Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(o.abs(path)), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(o.abs(path), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Create writes a new file, failing when the path already exists.
func (o *OS) Create(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(o.abs(path)), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	f, err := os.OpenFile(o.abs(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("create %s: %w", path, err)
	}
	return f.Close()
}

// Delete removes the file at path.
func (o *OS) Delete(path string) error {
	if err := os.Remove(o.abs(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// List returns the .md files directly inside folder.
func (o *OS) List(folder string) ([]string, error) {
	entries, err := os.ReadDir(o.abs(folder))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		paths = append(paths, joinPath(folder, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// MkdirAll creates folder and its parents.
func (o *OS) MkdirAll(folder string) error {
	if err := os.MkdirAll(o.abs(folder), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", folder, err)
	}
	return nil
}

func joinPath(folder, name string) string {
	if folder == "" || folder == "." {
		return name
	}
	return strings.TrimSuffix(folder, "/") + "/" + name
}
