package indra

import (
	"time"

	"github.com/futurehomeno/cliffhanger/adapter/service/chargepoint"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
)

// ServiceName represents Indra service name.
const ServiceName = "indra"

// Cable states as reported by the vendor in device properties.
const (
	CableStateNotCharging = "notCharging"
	CableStateCharging    = "charging"
	CableStateConnected   = "connected"
)

// Charger modes as reported by the vendor in device properties.
const (
	ChargerModeIdle     = "IDLE"
	ChargerModeBoost    = "BOOST"
	ChargerModeCharging = "CHARGING"
	ChargerModeSolar    = "SOLAR"
)

// Device property names.
const (
	PropertyCableState   = "cableState"
	PropertyChargerMode  = "chargerMode"
	PropertyBoost        = "boost"
	PropertyDeviceLocked = "deviceLocked"
)

// Charging modes supported by the chargepoint service.
const (
	ChargingModeNormal = "normal"
	ChargingModeSolar  = "solar"
)

// SupportedChargingModes returns all charging modes supported by the adapter.
func SupportedChargingModes() []string {
	return []string{ChargingModeNormal, ChargingModeSolar}
}

// SupportedChargepointStates returns all chargepoint states the adapter may report.
func SupportedChargepointStates() []chargepoint.State {
	return []chargepoint.State{
		chargepoint.StateDisconnected,
		chargepoint.StateReadyToCharge,
		chargepoint.StateCharging,
		chargepoint.StateUnknown,
	}
}

// Snapshot is a full per-device aggregate produced by one successful poll cycle.
// It is immutable once published.
type Snapshot struct {
	Devices map[string]*DeviceSnapshot
	Taken   time.Time
}

// Device returns the snapshot of the selected device or nil if the device is unknown.
func (s *Snapshot) Device(deviceUID string) *DeviceSnapshot {
	if s == nil {
		return nil
	}

	return s.Devices[deviceUID]
}

// DeviceSnapshot aggregates everything fetched for a single device in one poll cycle.
type DeviceSnapshot struct {
	Device          api.Device
	Properties      api.DeviceProperties
	Telemetry       api.InstallationTelemetry
	DeviceTelemetry *api.DeviceTelemetry
	Solar           *api.SolarStatus
	Transaction     *api.Transaction
	Schedules       []api.Schedule

	// SessionBaseline is the cumulative energy reading recorded at the confirmed
	// start of the current plug-in event, nil when no session is in progress.
	SessionBaseline *float64
}

// CableState returns the reported cable state.
func (d *DeviceSnapshot) CableState() string {
	return d.Properties.Value(PropertyCableState)
}

// ChargerMode returns the reported charger mode.
func (d *DeviceSnapshot) ChargerMode() string {
	return d.Properties.Value(PropertyChargerMode)
}

// BoostActive reports whether boost charging is enabled.
func (d *DeviceSnapshot) BoostActive() bool {
	return d.Properties.Bool(PropertyBoost)
}

// Locked reports whether the charger is locked.
func (d *DeviceSnapshot) Locked() bool {
	return d.Properties.Bool(PropertyDeviceLocked)
}

// SolarEnabled reports whether solar matching is enabled.
func (d *DeviceSnapshot) SolarEnabled() bool {
	return d.Solar != nil && d.Solar.Enabled
}

// CurrentEnergyWh returns the cumulative energy delivered to the vehicle in watt-hours.
func (d *DeviceSnapshot) CurrentEnergyWh() *float64 {
	if d.DeviceTelemetry == nil {
		return nil
	}

	return d.DeviceTelemetry.Data.ActiveEnergyToEv
}

// PowerW returns the momentary power delivered to the vehicle in watts.
func (d *DeviceSnapshot) PowerW() *float64 {
	if d.DeviceTelemetry == nil {
		return nil
	}

	return d.DeviceTelemetry.Data.PowerToEv
}

// SessionEnergyKwh returns energy delivered during the current session in kilowatt-hours.
// Both a baseline and a current energy reading must be present.
func (d *DeviceSnapshot) SessionEnergyKwh() *float64 {
	energy := d.CurrentEnergyWh()
	if energy == nil || d.SessionBaseline == nil {
		return nil
	}

	session := (*energy - *d.SessionBaseline) / 1000

	return &session
}

// ActiveCharging reports whether the charger is actively delivering power.
// The charger mode and boost flag update ahead of the cable state, so an
// active mode promotes a merely connected cable to a charging session.
func (d *DeviceSnapshot) ActiveCharging() bool {
	if d.BoostActive() {
		return true
	}

	switch d.ChargerMode() {
	case ChargerModeBoost, ChargerModeCharging, ChargerModeSolar:
		return true
	case ChargerModeIdle:
		return false
	default:
		return false
	}
}

// ChargepointState maps the reported cable state and charger mode onto a chargepoint state.
func (d *DeviceSnapshot) ChargepointState() chargepoint.State {
	switch d.CableState() {
	case CableStateNotCharging:
		return chargepoint.StateDisconnected
	case CableStateCharging:
		return chargepoint.StateCharging
	case CableStateConnected:
		if d.ActiveCharging() {
			return chargepoint.StateCharging
		}

		return chargepoint.StateReadyToCharge
	default:
		return chargepoint.StateUnknown
	}
}
