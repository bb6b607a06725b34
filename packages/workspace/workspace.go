package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrOutsideRoot is returned for paths that resolve outside the workspace.
	ErrOutsideRoot = errors.New("path escapes workspace root")
	// ErrRoot is returned when an operation would remove or replace the root itself.
	ErrRoot = errors.New("operation not allowed on workspace root")
	// ErrIsDir is returned when a file operation targets a directory.
	ErrIsDir = errors.New("is a directory")
)

// Node is one entry of a directory listing.
type Node struct {
	Label    string  `json:"label" yaml:"label"`
	Path     string  `json:"path" yaml:"path"`
	Dir      bool    `json:"dir" yaml:"dir"`
	Children []*Node `json:"children" yaml:"children"`
}

// Workspace is a directory of request files. All paths passed to its
// methods are relative to the root.
type Workspace struct {
	fs       afero.Fs
	root     string
	debounce time.Duration
	logger   *zap.Logger
}

type Option func(*Workspace)

// WithDebounce sets how long Watch waits for a burst of events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New returns a workspace over fs rooted at root.
func New(fs afero.Fs, root string, opts ...Option) *Workspace {
	w := &Workspace{
		fs:       fs,
		root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewOS returns a workspace on the local disk. A relative root is made
// absolute so watch events can be mapped back to workspace paths.
func NewOS(root string, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	return New(afero.NewOsFs(), abs, opts...), nil
}

func (w *Workspace) Root() string {
	return w.root
}

// resolve maps a workspace path to a path on the underlying filesystem.
func (w *Workspace) resolve(rel string) (string, error) {
	full := filepath.Join(w.root, filepath.FromSlash(rel))
	r, err := filepath.Rel(w.root, full)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", rel, ErrOutsideRoot)
	}
	return full, nil
}

// resolveEntry is resolve for operations that must not touch the root.
func (w *Workspace) resolveEntry(rel string) (string, error) {
	full, err := w.resolve(rel)
	if err != nil {
		return "", err
	}
	if full == w.root {
		return "", fmt.Errorf("%q: %w", rel, ErrRoot)
	}
	return full, nil
}

// relative maps an underlying path back to a slash-separated workspace path.
func (w *Workspace) relative(full string) string {
	r, err := filepath.Rel(w.root, full)
	if err != nil {
		return full
	}
	return filepath.ToSlash(r)
}

// Tree lists rel recursively. Children are sorted by name.
func (w *Workspace) Tree(rel string) (*Node, error) {
	full, err := w.resolve(rel)
	if err != nil {
		return nil, err
	}
	return w.tree(full)
}

func (w *Workspace) tree(full string) (*Node, error) {
	info, err := w.fs.Stat(full)
	if err != nil {
		return nil, err
	}

	node := &Node{
		Label:    filepath.Base(full),
		Path:     w.relative(full),
		Dir:      info.IsDir(),
		Children: []*Node{},
	}
	if !node.Dir {
		return node, nil
	}

	entries, err := afero.ReadDir(w.fs, full)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		child, err := w.tree(filepath.Join(full, entry.Name()))
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (w *Workspace) ReadFile(rel string) (string, error) {
	full, err := w.resolve(rel)
	if err != nil {
		return "", err
	}
	info, err := w.fs.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", rel, ErrIsDir)
	}
	data, err := afero.ReadFile(w.fs, full)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile replaces the file content, creating parent directories.
func (w *Workspace) WriteFile(rel, content string) error {
	full, err := w.resolveEntry(rel)
	if err != nil {
		return err
	}
	if info, err := w.fs.Stat(full); err == nil && info.IsDir() {
		return fmt.Errorf("%s: %w", rel, ErrIsDir)
	}
	if err := w.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(w.fs, full, []byte(content), 0o644)
}

// Remove deletes a file or a directory with everything in it.
func (w *Workspace) Remove(rel string) error {
	full, err := w.resolveEntry(rel)
	if err != nil {
		return err
	}
	if _, err := w.fs.Stat(full); err != nil {
		return err
	}
	return w.fs.RemoveAll(full)
}

func (w *Workspace) Rename(from, to string) error {
	src, err := w.resolveEntry(from)
	if err != nil {
		return err
	}
	dst, err := w.resolveEntry(to)
	if err != nil {
		return err
	}
	if _, err := w.fs.Stat(src); err != nil {
		return err
	}
	if _, err := w.fs.Stat(dst); err == nil {
		return &os.PathError{Op: "rename", Path: to, Err: os.ErrExist}
	}
	if err := w.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return w.fs.Rename(src, dst)
}

// Mkdir creates a directory and any missing parents.
func (w *Workspace) Mkdir(rel string) error {
	full, err := w.resolveEntry(rel)
	if err != nil {
		return err
	}
	return w.fs.MkdirAll(full, 0o755)
}

// Touch creates an empty file, or updates the times of an existing one.
func (w *Workspace) Touch(rel string) error {
	full, err := w.resolveEntry(rel)
	if err != nil {
		return err
	}

	if _, err := w.fs.Stat(full); err == nil {
		now := time.Now()
		return w.fs.Chtimes(full, now, now)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := w.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := w.fs.Create(full)
	if err != nil {
		return err
	}
	return f.Close()
}
