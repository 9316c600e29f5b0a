package db

import (
	"github.com/futurehomeno/cliffhanger/database"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	bucketName = "session-state:"
	stateKey   = "reconciliation"

	// SchemaVersion tags the persisted blob for forward migration.
	SchemaVersion = 1
)

// SessionState is the durable projection of per-device reconciliation data:
// session energy baselines, last observed cable states and unplug debounce counters.
type SessionState struct {
	Version     int                `json:"version"`
	Baselines   map[string]float64 `json:"baselines"`
	CableStates map[string]string  `json:"cable_states"`
	UnplugCount map[string]int     `json:"unplug_count"`
}

// NewSessionState returns an empty-initialized session state.
func NewSessionState() *SessionState {
	return &SessionState{
		Version:     SchemaVersion,
		Baselines:   make(map[string]float64),
		CableStates: make(map[string]string),
		UnplugCount: make(map[string]int),
	}
}

// normalize fills in maps missing from blobs written by older schemas.
func (s *SessionState) normalize() {
	if s.Baselines == nil {
		s.Baselines = make(map[string]float64)
	}

	if s.CableStates == nil {
		s.CableStates = make(map[string]string)
	}

	if s.UnplugCount == nil {
		s.UnplugCount = make(map[string]int)
	}
}

// StateStorage persists reconciliation state across process restarts.
type StateStorage interface {
	Start() error
	Stop() error

	// Load reads the persisted state. A missing or malformed blob yields an empty-initialized state.
	Load() (*SessionState, error)
	// Save overwrites the persisted state.
	Save(state *SessionState) error
}

type stateStorage struct {
	db database.Database
}

// NewStateStorage creates a state storage on top of the provided database.
func NewStateStorage(db database.Database) StateStorage {
	return &stateStorage{db: db}
}

func (s *stateStorage) Start() error {
	return s.db.Start()
}

func (s *stateStorage) Stop() error {
	return s.db.Stop()
}

func (s *stateStorage) Load() (*SessionState, error) {
	state := &SessionState{}

	ok, err := s.db.Get(bucketName, stateKey, state)
	if err != nil {
		log.WithError(err).Warn("state storage: stored blob is unreadable, starting from an empty state")

		return NewSessionState(), nil
	}

	if !ok {
		return NewSessionState(), nil
	}

	state.normalize()

	return state, nil
}

func (s *stateStorage) Save(state *SessionState) error {
	state.Version = SchemaVersion

	if err := s.db.Set(bucketName, stateKey, state); err != nil {
		return errors.Wrap(err, "state storage: failed to persist session state")
	}

	return nil
}
