package indra

import (
	"fmt"
	"strings"
	"time"

	"github.com/futurehomeno/cliffhanger/adapter/service/chargepoint"
	"github.com/futurehomeno/cliffhanger/adapter/service/numericmeter"
	"github.com/pkg/errors"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
)

// Controller represents a charger controller.
type Controller interface {
	chargepoint.Controller
	chargepoint.AdjustableCableLockController
	numericmeter.Reporter
}

// NewController returns a new instance of Controller.
func NewController(coordinator Coordinator, client api.Client, deviceUID string, overlay Cache) Controller {
	return &controller{
		coordinator: coordinator,
		client:      client,
		deviceUID:   deviceUID,
		overlay:     overlay,
	}
}

type controller struct {
	coordinator Coordinator
	client      api.Client
	deviceUID   string
	overlay     Cache
}

func (c *controller) StartChargepointCharging(settings *chargepoint.ChargingSettings) error {
	switch strings.ToLower(settings.Mode) {
	case ChargingModeSolar:
		if err := c.client.EnableSolar(c.deviceUID); err != nil {
			return fmt.Errorf("failed to enable solar matching for device %s: %w", c.deviceUID, err)
		}

		c.overlay.SetSolar(true)
	default:
		if err := c.client.StartBoost(c.deviceUID); err != nil {
			return fmt.Errorf("failed to start boost charging for device %s: %w", c.deviceUID, err)
		}

		c.overlay.SetBoost(true)
	}

	return nil
}

func (c *controller) StopChargepointCharging() error {
	if c.solarCharging() {
		if err := c.client.DisableSolar(c.deviceUID); err != nil {
			return fmt.Errorf("failed to disable solar matching for device %s: %w", c.deviceUID, err)
		}

		c.overlay.SetSolar(false)

		return nil
	}

	if err := c.client.StopBoost(c.deviceUID); err != nil {
		return fmt.Errorf("failed to stop boost charging for device %s: %w", c.deviceUID, err)
	}

	c.overlay.SetBoost(false)

	return nil
}

func (c *controller) SetChargepointCableLock(locked bool) error {
	if locked {
		if err := c.client.Lock(c.deviceUID); err != nil {
			return fmt.Errorf("failed to lock device %s: %w", c.deviceUID, err)
		}
	} else {
		if err := c.client.Unlock(c.deviceUID); err != nil {
			return fmt.Errorf("failed to unlock device %s: %w", c.deviceUID, err)
		}
	}

	c.overlay.SetLocked(locked)

	return nil
}

func (c *controller) ChargepointCableLockReport() (*chargepoint.CableReport, error) {
	snapshot, device, err := c.deviceSnapshot()
	if err != nil {
		return nil, err
	}

	report := &chargepoint.CableReport{CableLock: device.Locked()}

	if locked, ok := c.overlay.Locked(snapshot.Taken); ok {
		report.CableLock = locked
	}

	return report, nil
}

func (c *controller) ChargepointCurrentSessionReport() (*chargepoint.SessionReport, error) {
	_, device, err := c.deviceSnapshot()
	if err != nil {
		return nil, err
	}

	report := &chargepoint.SessionReport{}

	if energy := device.SessionEnergyKwh(); energy != nil {
		report.SessionEnergy = *energy
	}

	if transaction := device.Transaction; transaction != nil {
		report.PreviousSessionEnergy = transaction.Totals.EnergyImportedKwh

		if startedAt, err := time.Parse(time.RFC3339, transaction.Start); err == nil {
			report.StartedAt = startedAt
		}

		if finishedAt, err := time.Parse(time.RFC3339, transaction.End); err == nil {
			report.FinishedAt = finishedAt
		}
	}

	return report, nil
}

// ChargepointStateReport reports the charging state, overlaid with the outcome of
// a recent start or stop command until a newer snapshot confirms it.
func (c *controller) ChargepointStateReport() (chargepoint.State, error) {
	snapshot, device, err := c.deviceSnapshot()
	if err != nil {
		return "", err
	}

	state := device.ChargepointState()

	boost, ok := c.overlay.Boost(snapshot.Taken)
	if !ok {
		return state, nil
	}

	switch {
	case boost && state == chargepoint.StateReadyToCharge:
		return chargepoint.StateCharging, nil
	case !boost && state == chargepoint.StateCharging:
		return chargepoint.StateReadyToCharge, nil
	default:
		return state, nil
	}
}

func (c *controller) MeterReport(unit numericmeter.Unit) (float64, error) {
	_, device, err := c.deviceSnapshot()
	if err != nil {
		return 0, err
	}

	switch unit { //nolint:exhaustive
	case numericmeter.UnitW:
		if power := device.PowerW(); power != nil {
			return *power, nil
		}

		return 0, nil
	case numericmeter.UnitKWh:
		if energy := device.CurrentEnergyWh(); energy != nil {
			return *energy / 1000, nil
		}

		return 0, nil
	default:
		return 0, errors.Errorf("unsupported unit: %s", unit)
	}
}

// solarCharging decides which stop command to issue based on the latest known charger mode.
func (c *controller) solarCharging() bool {
	snapshot := c.coordinator.Snapshot()
	if snapshot == nil {
		return false
	}

	device := snapshot.Device(c.deviceUID)
	if device == nil {
		return false
	}

	if solar, ok := c.overlay.Solar(snapshot.Taken); ok {
		return solar
	}

	return device.ChargerMode() == ChargerModeSolar
}

func (c *controller) deviceSnapshot() (*Snapshot, *DeviceSnapshot, error) {
	snapshot, err := c.coordinator.LatestSnapshot()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get the latest snapshot")
	}

	device := snapshot.Device(c.deviceUID)
	if device == nil {
		return nil, nil, errors.Errorf("device %s is not present in the latest snapshot", c.deviceUID)
	}

	return snapshot, device, nil
}
