package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// ErrDuplicateIndex is returned when two clips parse to the same index
// (for example "1.mov" and "01.mov").
var ErrDuplicateIndex = errors.New("duplicate clip index")

// IndexRegistry tracks which clip file owns each numeric index. Two distinct
// files may never share an index because their relative order would be
// undefined. All methods are goroutine-safe.
type IndexRegistry struct {
	mu     sync.Mutex
	owners map[int]string // index → path that owns it
}

// NewIndexRegistry creates a ready-to-use registry.
func NewIndexRegistry() *IndexRegistry {
	return &IndexRegistry{owners: make(map[int]string)}
}

// Claim records path as the owner of index. Claiming the same index twice
// with the same path is a no-op; a different path yields ErrDuplicateIndex.
func (r *IndexRegistry) Claim(index int, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, exists := r.owners[index]
	if !exists || owner == path {
		r.owners[index] = path
		return nil
	}
	return fmt.Errorf("%w %d: %s and %s", ErrDuplicateIndex, index,
		filepath.Base(owner), filepath.Base(path))
}

// Len returns the number of claimed indices.
func (r *IndexRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}
