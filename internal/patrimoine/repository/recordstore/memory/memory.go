package memory

import (
	"context"
	"sync"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
)

// SnapshotStore is the in-memory Store used by tests.
type SnapshotStore struct {
	mu    sync.RWMutex
	blobs map[recordstore.Collection][]byte
}

func New() *SnapshotStore {
	return &SnapshotStore{
		blobs: make(map[recordstore.Collection][]byte),
	}
}

func (s *SnapshotStore) Load(_ context.Context, c recordstore.Collection) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[c]
	if !ok {
		return nil, recordstore.ErrNotFound
	}

	cp := make([]byte, len(blob))
	copy(cp, blob)

	return cp, nil
}

func (s *SnapshotStore) Save(_ context.Context, c recordstore.Collection, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(blob))
	copy(cp, blob)
	s.blobs[c] = cp

	return nil
}

func (s *SnapshotStore) Delete(_ context.Context, c recordstore.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, c)

	return nil
}

func (s *SnapshotStore) Shutdown(_ context.Context) error {
	return nil
}
