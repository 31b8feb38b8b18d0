// Package storage owns the output directory that per-line segments and
// combined podcasts are written to.
//
// With namespacing enabled every request writes into its own subdirectory
// named by a ULID. With it disabled all requests share the root, and
// concurrent requests race on the combined file and on preview files.
package storage

import (
	"crypto/rand"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// Output is the root directory served under URLPrefix.
type Output struct {
	root      string
	urlPrefix string
	namespace bool
}

func NewOutput(root, urlPrefix string, namespace bool) (*Output, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", root, err)
	}
	return &Output{root: root, urlPrefix: urlPrefix, namespace: namespace}, nil
}

func (o *Output) Root() string { return o.root }

// NewRequestID generates a ULID for a new request.
func NewRequestID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return id.String(), nil
}

// NewWorkspace returns the directory a single request writes into.
func (o *Output) NewWorkspace() (*Workspace, error) {
	id, err := NewRequestID()
	if err != nil {
		return nil, err
	}
	if !o.namespace {
		return &Workspace{ID: id, Dir: o.root, URLPrefix: o.urlPrefix}, nil
	}
	dir := filepath.Join(o.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", dir, err)
	}
	return &Workspace{ID: id, Dir: dir, URLPrefix: path.Join(o.urlPrefix, id)}, nil
}

// Shared returns the un-namespaced root workspace, used for previews.
func (o *Output) Shared() *Workspace {
	return &Workspace{Dir: o.root, URLPrefix: o.urlPrefix}
}

// Workspace is a directory plus the URL prefix it is served under.
type Workspace struct {
	ID        string
	Dir       string
	URLPrefix string
}

func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

func (w *Workspace) URL(name string) string {
	return path.Join(w.URLPrefix, name)
}

// checkName rejects names that would resolve outside the workspace.
func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

func (w *Workspace) WriteFile(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.WriteFile(w.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (w *Workspace) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(w.Path(name))
}

// Create truncates or creates name for writing.
func (w *Workspace) Create(name string) (*os.File, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return os.Create(w.Path(name))
}

// Remove deletes name; a missing file is not an error.
func (w *Workspace) Remove(name string) error {
	err := os.Remove(w.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
