package indra

import (
	"fmt"
	"sync"

	"github.com/futurehomeno/cliffhanger/adapter/cache"
	"github.com/michalkurzeja/go-clock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
	"github.com/futurehomeno/edge-indra-adapter/internal/config"
	"github.com/futurehomeno/edge-indra-adapter/internal/db"
)

// unplugConfirmationPolls is the number of consecutive "notCharging" polls
// required before a session baseline is cleared. Supplier stop/start cycles
// can briefly report "notCharging" without an actual unplug.
const unplugConfirmationPolls = 2

// Coordinator orchestrates poll cycles against the Indra API and owns the
// per-device session energy reconciliation state.
//
// All reconciliation state is held by a single coordinator instance and is
// only ever touched within a refresh cycle, serialized by a mutex.
type Coordinator interface {
	Start() error
	Stop() error

	// LatestSnapshot returns a snapshot no older than the polling interval,
	// running a refresh cycle if the cached one expired.
	LatestSnapshot() (*Snapshot, error)
	// Snapshot returns the last successfully published snapshot, nil if none exists yet.
	Snapshot() *Snapshot
	// Refresh unconditionally runs a full poll cycle and publishes a new snapshot.
	Refresh() (*Snapshot, error)
}

type coordinator struct {
	mu         sync.Mutex
	client     api.Client
	auth       api.Authenticator
	cfgService *config.Service
	storage    db.StateStorage
	refresher  cache.Refresher[*Snapshot]

	state       *db.SessionState
	savePending bool
	snapshot    *Snapshot
}

// NewCoordinator returns a new instance of Coordinator.
func NewCoordinator(client api.Client, auth api.Authenticator, cfgService *config.Service, storage db.StateStorage) Coordinator {
	c := &coordinator{
		client:     client,
		auth:       auth,
		cfgService: cfgService,
		storage:    storage,
	}

	c.refresher = cache.NewRefresher(c.Refresh, cfgService.GetPollingInterval())

	return c
}

func (c *coordinator) Start() error {
	return c.storage.Start()
}

func (c *coordinator) Stop() error {
	return c.storage.Stop()
}

func (c *coordinator) LatestSnapshot() (*Snapshot, error) {
	return c.refresher.Refresh()
}

func (c *coordinator) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot
}

func (c *coordinator) Refresh() (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureState(); err != nil {
		return nil, err
	}

	snapshot, err := c.runCycle()
	if err != nil {
		return nil, err
	}

	c.persistIfChanged()

	c.snapshot = snapshot

	return snapshot, nil
}

// runCycle performs one full poll cycle. A rejected token triggers a single
// refresh-and-rerun of the whole cycle so every fetch uses the new token.
// Any other failure aborts the cycle, no partial snapshot is published.
func (c *coordinator) runCycle() (*Snapshot, error) {
	snapshot, err := c.fetchAll()
	if err == nil {
		return snapshot, nil
	}

	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		return nil, errors.Wrap(err, "coordinator: poll cycle failed")
	}

	log.WithError(err).Warn("coordinator: authentication failure during poll cycle, attempting token refresh")

	if refreshErr := c.auth.Refresh(); refreshErr != nil {
		return nil, errors.Wrap(refreshErr, "coordinator: token refresh after an authentication failure failed")
	}

	snapshot, err = c.fetchAll()
	if err != nil {
		return nil, errors.Wrap(err, "coordinator: poll cycle failed after token refresh")
	}

	return snapshot, nil
}

func (c *coordinator) fetchAll() (*Snapshot, error) {
	devices, err := c.client.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch devices: %w", err)
	}

	schedules, err := c.client.Schedules()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}

	snapshot := &Snapshot{
		Devices: make(map[string]*DeviceSnapshot, len(devices)),
		Taken:   clock.Now().UTC(),
	}

	for _, device := range devices {
		deviceSnapshot, err := c.fetchDevice(device, schedules)
		if err != nil {
			return nil, err
		}

		snapshot.Devices[device.DeviceUID] = deviceSnapshot
	}

	return snapshot, nil
}

func (c *coordinator) fetchDevice(device api.Device, schedules []api.Schedule) (*DeviceSnapshot, error) {
	deviceUID := device.DeviceUID

	properties, err := c.client.DeviceProperties(deviceUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch properties of device %s: %w", deviceUID, err)
	}

	var telemetry api.InstallationTelemetry

	if locationUID := device.Location.LocationUID; locationUID != "" {
		telemetry, err = c.client.InstallationTelemetry(locationUID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch installation telemetry of device %s: %w", deviceUID, err)
		}
	}

	solar, err := c.client.SolarStatus(deviceUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch solar status of device %s: %w", deviceUID, err)
	}

	deviceTelemetry, err := c.client.DeviceTelemetry(deviceUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch telemetry of device %s: %w", deviceUID, err)
	}

	transaction, err := c.client.LatestTransaction(deviceUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest transaction of device %s: %w", deviceUID, err)
	}

	deviceSnapshot := &DeviceSnapshot{
		Device:          device,
		Properties:      properties,
		Telemetry:       telemetry,
		DeviceTelemetry: deviceTelemetry,
		Solar:           solar,
		Transaction:     transaction,
		Schedules:       deviceSchedules(schedules, deviceUID),
	}

	deviceSnapshot.SessionBaseline = c.reconcile(deviceUID, deviceSnapshot.CableState(), deviceSnapshot.CurrentEnergyWh())

	return deviceSnapshot, nil
}

// reconcile runs the session energy state machine for a single device and
// returns the baseline to publish. State mutations mark a pending persistence write.
//
// A baseline exists if and only if the device is currently plugged in and has
// been continuously so since the last confirmed unplug.
func (c *coordinator) reconcile(deviceUID, cableState string, energyWh *float64) *float64 {
	if cableState == CableStateNotCharging {
		// The counter saturates at the confirmation threshold so a charger that
		// stays unplugged does not rewrite the persisted state on every poll.
		if c.state.UnplugCount[deviceUID] < unplugConfirmationPolls {
			c.state.UnplugCount[deviceUID]++
			c.savePending = true
		}

		if c.state.UnplugCount[deviceUID] >= unplugConfirmationPolls {
			if _, ok := c.state.Baselines[deviceUID]; ok {
				delete(c.state.Baselines, deviceUID)

				log.WithField("device", deviceUID).Debug("coordinator: confirmed unplug, cleared session baseline")
			}
		}
	} else if c.state.UnplugCount[deviceUID] != 0 {
		c.state.UnplugCount[deviceUID] = 0
		c.savePending = true
	}

	pluggedIn := cableState == CableStateCharging || cableState == CableStateConnected

	if _, ok := c.state.Baselines[deviceUID]; !ok && pluggedIn && energyWh != nil {
		c.state.Baselines[deviceUID] = *energyWh
		c.savePending = true

		log.WithField("device", deviceUID).Debugf("coordinator: car plugged in, session baseline: %.0f Wh", *energyWh)
	}

	if prior, ok := c.state.CableStates[deviceUID]; !ok || prior != cableState {
		c.state.CableStates[deviceUID] = cableState
		c.savePending = true
	}

	baseline, ok := c.state.Baselines[deviceUID]
	if !ok {
		return nil
	}

	return &baseline
}

// ensureState loads persisted reconciliation state on the first poll after process start.
func (c *coordinator) ensureState() error {
	if c.state != nil {
		return nil
	}

	state, err := c.storage.Load()
	if err != nil {
		return errors.Wrap(err, "coordinator: failed to load persisted session state")
	}

	c.state = state

	return nil
}

// persistIfChanged writes the reconciliation state only when its contents changed.
// A failed write is retried on the next cycle and does not fail the current one.
func (c *coordinator) persistIfChanged() {
	if !c.savePending {
		return
	}

	if err := c.storage.Save(c.state); err != nil {
		log.WithError(err).Warn("coordinator: failed to persist session state, will retry next cycle")

		return
	}

	c.savePending = false
}

func deviceSchedules(schedules []api.Schedule, deviceUID string) []api.Schedule {
	var filtered []api.Schedule

	for _, s := range schedules {
		if s.DeviceUID == deviceUID {
			filtered = append(filtered, s)
		}
	}

	return filtered
}
