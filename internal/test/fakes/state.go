package fakes

import (
	"encoding/json"
	"sync"

	"github.com/futurehomeno/edge-indra-adapter/internal/db"
)

type fakeStateStorage struct {
	mu   sync.Mutex
	blob []byte

	loadErr error
	saveErr error
	saves   int
}

// NewStateStorage returns an in-memory implementation of db.StateStorage.
// Not suitable for production use.
func NewStateStorage() *fakeStateStorage { //nolint:revive
	return &fakeStateStorage{}
}

// NewFailingStateStorage returns an in-memory state storage failing all writes with the provided error.
func NewFailingStateStorage(saveErr error) *fakeStateStorage { //nolint:revive
	return &fakeStateStorage{saveErr: saveErr}
}

func (f *fakeStateStorage) Start() error { return nil }

func (f *fakeStateStorage) Stop() error { return nil }

func (f *fakeStateStorage) Load() (*db.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}

	state := db.NewSessionState()

	if f.blob == nil {
		return state, nil
	}

	if err := json.Unmarshal(f.blob, state); err != nil {
		return db.NewSessionState(), nil
	}

	return state, nil
}

func (f *fakeStateStorage) Save(state *db.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}

	f.blob = blob
	f.saves++

	return nil
}

// Saves reports how many successful writes were performed.
func (f *fakeStateStorage) Saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.saves
}

// FailSaves makes all subsequent writes fail with the provided error. Pass nil to heal the storage.
func (f *fakeStateStorage) FailSaves(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saveErr = err
}
