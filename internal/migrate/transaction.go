package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrConflict is returned when a file changed between planning and commit.
var ErrConflict = errors.New("file changed since it was read")

// Transaction applies the outcome of one file conversion.
type Transaction interface {
	Commit(path string, before, after []byte) error
}

// FileTransaction replaces the file through a temporary sibling and a
// rename, so the file is either fully converted or untouched.
type FileTransaction struct{}

func (FileTransaction) Commit(path string, before, after []byte) error {
	current, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("re-reading %s: %w", path, err)
	}
	if !bytes.Equal(current, before) {
		return fmt.Errorf("%s: %w", path, ErrConflict)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(after); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Diff is a unified diff recorded by a DryRunTransaction.
type Diff struct {
	Path    string `json:"path"`
	Unified string `json:"unified"`
}

// DryRunTransaction records unified diffs and leaves files untouched.
type DryRunTransaction struct {
	mu    sync.Mutex
	diffs []Diff
}

func (d *DryRunTransaction) Commit(path string, before, after []byte) error {
	text, err := UnifiedDiff(path, before, after)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.diffs = append(d.diffs, Diff{Path: path, Unified: text})
	d.mu.Unlock()
	return nil
}

// Diffs returns the recorded diffs in commit order.
func (d *DryRunTransaction) Diffs() []Diff {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Diff(nil), d.diffs...)
}

// UnifiedDiff renders the change of one file with three lines of context.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + filepath.ToSlash(path),
		ToFile:   "b/" + filepath.ToSlash(path),
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diffing %s: %w", path, err)
	}
	return text, nil
}
