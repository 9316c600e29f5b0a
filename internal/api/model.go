package api

// Device represents charger data as reported by the device list endpoint.
type Device struct {
	DeviceUID       string      `json:"deviceUID"`
	FirmwareVersion string      `json:"firmwareVersion"`
	Location        Location    `json:"location"`
	DeviceModel     DeviceModel `json:"deviceModel"`
}

// Location represents an installation the device belongs to.
type Location struct {
	LocationUID string `json:"locationUID"`
}

// DeviceModel represents device model metadata.
type DeviceModel struct {
	DeviceModel    string  `json:"deviceModel"`
	DeviceCapacity float64 `json:"deviceCapacity"`
}

// Property is a single named device setting. All setting values are transported as strings.
type Property struct {
	SettingValue string `json:"settingValue"`
}

// DeviceProperties is a set of device settings keyed by setting name.
type DeviceProperties map[string]Property

// Value returns the raw string value of a setting or an empty string if the setting is absent.
func (p DeviceProperties) Value(name string) string {
	return p[name].SettingValue
}

// Bool interprets a setting value as a boolean flag.
func (p DeviceProperties) Bool(name string) bool {
	return p[name].SettingValue == "True"
}

// InstallationTelemetry represents latest readings reported on the installation level.
// The payload shape varies between installations, so it is kept untyped.
type InstallationTelemetry map[string]interface{}

// DeviceTelemetry represents latest readings reported by a single device.
type DeviceTelemetry struct {
	State string        `json:"state"`
	Data  TelemetryData `json:"data"`
}

// TelemetryData contains electrical readings of a device.
// Pointers distinguish a missing reading from a zero one.
type TelemetryData struct {
	PowerToEv        *float64 `json:"powerToEv"`
	Current          *float64 `json:"current"`
	Voltage          *float64 `json:"voltage"`
	Temperature      *float64 `json:"temp"`
	Frequency        *float64 `json:"freq"`
	CtClamp          *float64 `json:"ctClamp"`
	ActiveEnergyToEv *float64 `json:"activeEnergyToEv"`
}

// SolarStatus represents the state of solar matching for a device.
type SolarStatus struct {
	Enabled bool `json:"enabled"`
}

// Transaction represents a single charging session report.
type Transaction struct {
	DeviceUID string            `json:"deviceUId"`
	Start     string            `json:"start"`
	End       string            `json:"end"`
	Totals    TransactionTotals `json:"totals"`
}

// TransactionTotals contains aggregates of a charging session.
type TransactionTotals struct {
	EnergyImportedKwh float64 `json:"energyImportedKwh"`
	RangeMiles        float64 `json:"rangeMiles"`
}

// Schedule represents a charge schedule. Schedules are reported account-wide
// and carry the device they apply to.
type Schedule struct {
	DeviceUID string `json:"deviceUId"`
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	Start     string `json:"start"`
	End       string `json:"end"`
}
