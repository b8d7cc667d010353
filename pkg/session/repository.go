package session

import (
	"errors"
	"fmt"
	"io/fs"
	"math/bits"
	"path/filepath"
	"strings"
	"sync"

	"github.com/OpenTraceLab/ttjtag/pkg/bsdl"
	"github.com/OpenTraceLab/ttjtag/pkg/device"
)

// ErrNotFound is returned when no description matches an IDCODE.
var ErrNotFound = errors.New("session: no BSDL for IDCODE")

// Repository finds the BSDL description of a device by IDCODE.
type Repository interface {
	Lookup(id uint32) (*bsdl.Description, error)
}

// MemoryRepository holds parsed descriptions in memory. Entries match on the
// bits their IDCODE_REGISTER specifies, so version wildcards work.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []repoEntry
}

type repoEntry struct {
	value uint32
	mask  uint32
	desc  *bsdl.Description
}

func (e repoEntry) matches(id uint32) bool {
	return id&e.mask == e.value&e.mask
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// DefaultRepository returns a repository holding the embedded description
// of the counter peripheral.
func DefaultRepository() (*MemoryRepository, error) {
	r := NewMemoryRepository()
	desc, err := bsdl.Load(device.Entity, device.BSDL)
	if err != nil {
		return nil, fmt.Errorf("session: embedded BSDL: %w", err)
	}
	if err := r.Add(desc); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers desc under its IDCODE_REGISTER. Later entries with the same
// value and mask replace earlier ones.
func (r *MemoryRepository) Add(desc *bsdl.Description) error {
	value, mask, ok := desc.IDCode()
	if !ok {
		return fmt.Errorf("session: %s has no IDCODE_REGISTER", desc.Entity)
	}
	if mask == 0 {
		return fmt.Errorf("session: %s IDCODE_REGISTER is all wildcards", desc.Entity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.value&e.mask == value&mask && e.mask == mask {
			r.entries[i].desc = desc
			return nil
		}
	}
	r.entries = append(r.entries, repoEntry{value: value, mask: mask, desc: desc})
	return nil
}

// Lookup returns the most specific description matching id.
func (r *MemoryRepository) Lookup(id uint32) (*bsdl.Description, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *repoEntry
	for i := range r.entries {
		e := &r.entries[i]
		if !e.matches(id) {
			continue
		}
		if best == nil || bits.OnesCount32(e.mask) > bits.OnesCount32(best.mask) {
			best = e
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w %#08x", ErrNotFound, id)
	}
	return best.desc, nil
}

// Len returns the number of registered descriptions.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// LoadFiles parses each path and adds it.
func (r *MemoryRepository) LoadFiles(paths ...string) error {
	for _, path := range paths {
		if err := r.loadFile(path); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir recursively loads all .bsd/.bsdl/.bsm files below root.
func (r *MemoryRepository) LoadDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isBSDLFile(path) {
			return nil
		}
		return r.loadFile(path)
	})
}

func (r *MemoryRepository) loadFile(path string) error {
	desc, err := bsdl.LoadFile(path)
	if err != nil {
		return fmt.Errorf("session: load %s: %w", path, err)
	}
	if err := r.Add(desc); err != nil {
		return fmt.Errorf("session: add %s: %w", path, err)
	}
	log.Debugf("loaded %s from %s", desc.Entity, path)
	return nil
}

func isBSDLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bsd", ".bsdl", ".bsm":
		return true
	default:
		return false
	}
}
