package credentials

import (
	"sync"

	"github.com/matheus3301/evowpp/internal/provider"
)

// MemoryRepository is an in-process Repository. It stores the encoded form so
// that Load goes through the same fail-closed decoding as the SQLite store.
type MemoryRepository struct {
	mu    sync.Mutex
	raw   []byte
	saves int
	err   error
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load() (*provider.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raw == nil {
		return nil, nil
	}
	cfg, _ := decode(r.raw)
	return cfg, nil
}

func (r *MemoryRepository) Save(cfg provider.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	raw, err := encode(cfg)
	if err != nil {
		return err
	}
	r.raw = raw
	r.saves++
	return nil
}

// Saves returns how many successful writes have happened.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// SetRaw replaces the stored bytes verbatim, bypassing encoding.
func (r *MemoryRepository) SetRaw(raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = raw
}

// FailSaves makes every following Save return err. Pass nil to clear.
func (r *MemoryRepository) FailSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Clear forgets the stored config.
func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = nil
	return nil
}
