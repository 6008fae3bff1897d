package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/backmassage/camstitch/internal/naming"
)

// Workspace is the per-run scratch directory holding the intermediate and
// the conditioned audio. It is private to one run and removed on exit.
type Workspace struct {
	Dir   string
	RunID string
}

// NewWorkspace creates camstitch-<runID> under parent (os.TempDir() when
// empty). The directory must not already exist.
func NewWorkspace(parent, runID string) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	dir := filepath.Join(parent, naming.WorkspacePrefix+runID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir, RunID: runID}, nil
}

// Path returns the absolute path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	return os.RemoveAll(w.Dir)
}

// acquireOutputLock takes a non-blocking advisory lock on the hidden lock
// file next to output so two runs cannot write the same output. The caller
// must release it with releaseOutputLock.
func acquireOutputLock(output string) (*flock.Flock, error) {
	lockPath := naming.LockPath(output)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrOutputLocked, lockPath)
	}
	return lock, nil
}

// releaseOutputLock unlocks the lock file. The file stays in place so every
// run contends on the same inode.
func releaseOutputLock(lock *flock.Flock) error {
	if lock == nil {
		return nil
	}
	return lock.Unlock()
}

// commitOutput moves a finished partial file onto the final path. Both are
// in the same directory, so the rename is atomic and replaces any previous
// output in one step.
func commitOutput(partial, output string) error {
	if err := os.Rename(partial, output); err != nil {
		os.Remove(partial)
		return fmt.Errorf("commit output: %w", err)
	}
	return nil
}
