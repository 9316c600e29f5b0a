package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futurehomeno/edge-indra-adapter/internal/db"
	"github.com/futurehomeno/edge-indra-adapter/internal/test"
)

func TestStateStorage_LoadEmptyStore(t *testing.T) { //nolint:paralleltest
	database := test.NewDatabase(t, true)
	defer database.Stop() //nolint:errcheck

	storage := db.NewStateStorage(database)

	state, err := storage.Load()

	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Empty(t, state.Baselines)
	assert.Empty(t, state.CableStates)
	assert.Empty(t, state.UnplugCount)

	// Loading again must stay stable and must not create a blob.
	again, err := storage.Load()

	require.NoError(t, err)
	assert.Equal(t, state, again)
}

func TestStateStorage_SaveLoadRoundTrip(t *testing.T) { //nolint:paralleltest
	database := test.NewDatabase(t, true)
	defer database.Stop() //nolint:errcheck

	storage := db.NewStateStorage(database)

	state := db.NewSessionState()
	state.Baselines[test.DeviceUID] = 21500
	state.CableStates[test.DeviceUID] = "charging"
	state.UnplugCount[test.DeviceUID] = 1

	require.NoError(t, storage.Save(state))

	loaded, err := storage.Load()

	require.NoError(t, err)
	assert.Equal(t, db.SchemaVersion, loaded.Version)
	assert.InDelta(t, 21500, loaded.Baselines[test.DeviceUID], 0.001)
	assert.Equal(t, "charging", loaded.CableStates[test.DeviceUID])
	assert.Equal(t, 1, loaded.UnplugCount[test.DeviceUID])
}

func TestStateStorage_NormalizesPartialBlob(t *testing.T) { //nolint:paralleltest
	database := test.NewDatabase(t, true)
	defer database.Stop() //nolint:errcheck

	storage := db.NewStateStorage(database)

	// A blob written by an older schema may carry only some of the maps.
	require.NoError(t, storage.Save(&db.SessionState{
		Baselines: map[string]float64{test.DeviceUID: 100},
	}))

	loaded, err := storage.Load()

	require.NoError(t, err)
	assert.InDelta(t, 100, loaded.Baselines[test.DeviceUID], 0.001)
	assert.NotNil(t, loaded.CableStates)
	assert.NotNil(t, loaded.UnplugCount)
}
