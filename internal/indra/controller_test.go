package indra_test

import (
	"testing"
	"time"

	"github.com/futurehomeno/cliffhanger/adapter/service/chargepoint"
	"github.com/futurehomeno/cliffhanger/adapter/service/numericmeter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
	"github.com/futurehomeno/edge-indra-adapter/internal/api/mocks"
	"github.com/futurehomeno/edge-indra-adapter/internal/indra"
	"github.com/futurehomeno/edge-indra-adapter/internal/test"
)

type stubCoordinator struct {
	snapshot *indra.Snapshot
	err      error
}

func (s *stubCoordinator) Start() error { return nil }

func (s *stubCoordinator) Stop() error { return nil }

func (s *stubCoordinator) LatestSnapshot() (*indra.Snapshot, error) { return s.snapshot, s.err }

func (s *stubCoordinator) Snapshot() *indra.Snapshot { return s.snapshot }

func (s *stubCoordinator) Refresh() (*indra.Snapshot, error) { return s.snapshot, s.err }

func TestController_StartChargepointCharging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mode       string
		mockClient func(c *mocks.Client)
		wantErr    bool
		wantBoost  bool
		wantSolar  bool
	}{
		{
			name: "default mode starts boost charging",
			mode: "normal",
			mockClient: func(c *mocks.Client) {
				c.On("StartBoost", test.DeviceUID).Return(nil).Once()
			},
			wantBoost: true,
		},
		{
			name: "unknown mode falls back to boost charging",
			mode: "turbo",
			mockClient: func(c *mocks.Client) {
				c.On("StartBoost", test.DeviceUID).Return(nil).Once()
			},
			wantBoost: true,
		},
		{
			name: "solar mode enables solar matching",
			mode: "Solar",
			mockClient: func(c *mocks.Client) {
				c.On("EnableSolar", test.DeviceUID).Return(nil).Once()
			},
			wantSolar: true,
		},
		{
			name: "overlay is untouched when the command fails",
			mode: "normal",
			mockClient: func(c *mocks.Client) {
				c.On("StartBoost", test.DeviceUID).Return(errors.New("service unavailable")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := mocks.NewClient(t)
			tt.mockClient(client)

			overlay := indra.NewCache()
			since := time.Now().Add(-time.Minute)

			controller := indra.NewController(&stubCoordinator{}, client, test.DeviceUID, overlay)

			err := controller.StartChargepointCharging(&chargepoint.ChargingSettings{Mode: tt.mode})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			boost, boostSet := overlay.Boost(since)
			assert.Equal(t, tt.wantBoost, boostSet && boost)

			solar, solarSet := overlay.Solar(since)
			assert.Equal(t, tt.wantSolar, solarSet && solar)
		})
	}
}

func TestController_StopChargepointCharging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		coordinator func(overlay indra.Cache) *stubCoordinator
		mockClient  func(c *mocks.Client)
	}{
		{
			name: "no snapshot yet stops boost charging",
			coordinator: func(indra.Cache) *stubCoordinator {
				return &stubCoordinator{}
			},
			mockClient: func(c *mocks.Client) {
				c.On("StopBoost", test.DeviceUID).Return(nil).Once()
			},
		},
		{
			name: "snapshot in solar mode disables solar matching",
			coordinator: func(indra.Cache) *stubCoordinator {
				return &stubCoordinator{snapshot: newSnapshot(&indra.DeviceSnapshot{
					Properties: api.DeviceProperties{
						indra.PropertyChargerMode: {SettingValue: indra.ChargerModeSolar},
					},
				})}
			},
			mockClient: func(c *mocks.Client) {
				c.On("DisableSolar", test.DeviceUID).Return(nil).Once()
			},
		},
		{
			name: "overlay newer than the snapshot wins over the reported mode",
			coordinator: func(overlay indra.Cache) *stubCoordinator {
				coordinator := &stubCoordinator{snapshot: newSnapshot(&indra.DeviceSnapshot{
					Properties: api.DeviceProperties{
						indra.PropertyChargerMode: {SettingValue: indra.ChargerModeSolar},
					},
				})}

				coordinator.snapshot.Taken = time.Now().Add(-time.Minute)
				overlay.SetSolar(false)

				return coordinator
			},
			mockClient: func(c *mocks.Client) {
				c.On("StopBoost", test.DeviceUID).Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := mocks.NewClient(t)
			tt.mockClient(client)

			overlay := indra.NewCache()
			controller := indra.NewController(tt.coordinator(overlay), client, test.DeviceUID, overlay)

			assert.NoError(t, controller.StopChargepointCharging())
		})
	}
}

func TestController_SetChargepointCableLock(t *testing.T) {
	t.Parallel()

	client := mocks.NewClient(t)
	client.On("Lock", test.DeviceUID).Return(nil).Once()
	client.On("Unlock", test.DeviceUID).Return(nil).Once()

	overlay := indra.NewCache()
	since := time.Now().Add(-time.Minute)

	controller := indra.NewController(&stubCoordinator{}, client, test.DeviceUID, overlay)

	require.NoError(t, controller.SetChargepointCableLock(true))

	locked, ok := overlay.Locked(since)
	require.True(t, ok)
	assert.True(t, locked)

	require.NoError(t, controller.SetChargepointCableLock(false))

	locked, ok = overlay.Locked(since)
	require.True(t, ok)
	assert.False(t, locked)
}

func TestController_ChargepointCableLockReport(t *testing.T) {
	t.Parallel()

	t.Run("reports the snapshot value", func(t *testing.T) {
		t.Parallel()

		coordinator := &stubCoordinator{snapshot: newSnapshot(&indra.DeviceSnapshot{
			Properties: api.DeviceProperties{
				indra.PropertyDeviceLocked: {SettingValue: "True"},
			},
		})}

		controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, indra.NewCache())

		report, err := controller.ChargepointCableLockReport()

		require.NoError(t, err)
		assert.True(t, report.CableLock)
	})

	t.Run("an overlay entry newer than the snapshot wins", func(t *testing.T) {
		t.Parallel()

		coordinator := &stubCoordinator{snapshot: newSnapshot(&indra.DeviceSnapshot{
			Properties: api.DeviceProperties{
				indra.PropertyDeviceLocked: {SettingValue: "True"},
			},
		})}
		coordinator.snapshot.Taken = time.Now().Add(-time.Minute)

		overlay := indra.NewCache()
		overlay.SetLocked(false)

		controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, overlay)

		report, err := controller.ChargepointCableLockReport()

		require.NoError(t, err)
		assert.False(t, report.CableLock)
	})

	t.Run("an overlay entry older than the snapshot is ignored", func(t *testing.T) {
		t.Parallel()

		overlay := indra.NewCache()
		overlay.SetLocked(false)

		coordinator := &stubCoordinator{snapshot: newSnapshot(&indra.DeviceSnapshot{
			Properties: api.DeviceProperties{
				indra.PropertyDeviceLocked: {SettingValue: "True"},
			},
		})}
		coordinator.snapshot.Taken = time.Now().Add(time.Minute)

		controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, overlay)

		report, err := controller.ChargepointCableLockReport()

		require.NoError(t, err)
		assert.True(t, report.CableLock)
	})
}

func TestController_ChargepointCurrentSessionReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		device       *indra.DeviceSnapshot
		want         float64
		wantPrevious float64
	}{
		{
			name: "session in progress",
			device: &indra.DeviceSnapshot{
				DeviceTelemetry: &api.DeviceTelemetry{Data: api.TelemetryData{ActiveEnergyToEv: energy(6500)}},
				SessionBaseline: energy(5000),
			},
			want: 1.5,
		},
		{
			name: "no session in progress reports zero",
			device: &indra.DeviceSnapshot{
				DeviceTelemetry: &api.DeviceTelemetry{Data: api.TelemetryData{ActiveEnergyToEv: energy(6500)}},
			},
			want: 0,
		},
		{
			name: "latest transaction fills in the previous session",
			device: &indra.DeviceSnapshot{
				DeviceTelemetry: &api.DeviceTelemetry{Data: api.TelemetryData{ActiveEnergyToEv: energy(6500)}},
				Transaction: &api.Transaction{
					DeviceUID: test.DeviceUID,
					Start:     "2026-08-25T18:00:00Z",
					End:       "2026-08-25T22:30:00Z",
					Totals:    api.TransactionTotals{EnergyImportedKwh: 12.4},
				},
			},
			want:         0,
			wantPrevious: 12.4,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coordinator := &stubCoordinator{snapshot: newSnapshot(tt.device)}
			controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, indra.NewCache())

			report, err := controller.ChargepointCurrentSessionReport()

			require.NoError(t, err)
			assert.InDelta(t, tt.want, report.SessionEnergy, 0.001)
			assert.InDelta(t, tt.wantPrevious, report.PreviousSessionEnergy, 0.001)

			if tt.device.Transaction != nil {
				assert.Equal(t, time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC), report.StartedAt)
				assert.Equal(t, time.Date(2026, 8, 25, 22, 30, 0, 0, time.UTC), report.FinishedAt)
			}
		})
	}
}

func TestController_ChargepointStateReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		properties api.DeviceProperties
		want       chargepoint.State
	}{
		{
			name:       "unplugged cable",
			properties: api.DeviceProperties{indra.PropertyCableState: {SettingValue: indra.CableStateNotCharging}},
			want:       chargepoint.StateDisconnected,
		},
		{
			name:       "connected cable",
			properties: api.DeviceProperties{indra.PropertyCableState: {SettingValue: indra.CableStateConnected}},
			want:       chargepoint.StateReadyToCharge,
		},
		{
			name:       "charging cable",
			properties: api.DeviceProperties{indra.PropertyCableState: {SettingValue: indra.CableStateCharging}},
			want:       chargepoint.StateCharging,
		},
		{
			name:       "unrecognized cable state",
			properties: api.DeviceProperties{indra.PropertyCableState: {SettingValue: "errored"}},
			want:       chargepoint.StateUnknown,
		},
		{
			name: "connected cable with an idle mode",
			properties: api.DeviceProperties{
				indra.PropertyCableState:  {SettingValue: indra.CableStateConnected},
				indra.PropertyChargerMode: {SettingValue: indra.ChargerModeIdle},
			},
			want: chargepoint.StateReadyToCharge,
		},
		{
			name: "connected cable with an active boost mode",
			properties: api.DeviceProperties{
				indra.PropertyCableState:  {SettingValue: indra.CableStateConnected},
				indra.PropertyChargerMode: {SettingValue: indra.ChargerModeBoost},
			},
			want: chargepoint.StateCharging,
		},
		{
			name: "connected cable with an active charging mode",
			properties: api.DeviceProperties{
				indra.PropertyCableState:  {SettingValue: indra.CableStateConnected},
				indra.PropertyChargerMode: {SettingValue: indra.ChargerModeCharging},
			},
			want: chargepoint.StateCharging,
		},
		{
			name: "connected cable with the boost flag raised",
			properties: api.DeviceProperties{
				indra.PropertyCableState: {SettingValue: indra.CableStateConnected},
				indra.PropertyBoost:      {SettingValue: "True"},
			},
			want: chargepoint.StateCharging,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coordinator := &stubCoordinator{snapshot: newSnapshot(&indra.DeviceSnapshot{Properties: tt.properties})}

			controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, indra.NewCache())

			got, err := controller.ChargepointStateReport()

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestController_ChargepointStateReport_BoostOverlay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cableState string
		boost      bool
		overlayAge time.Duration
		want       chargepoint.State
	}{
		{
			name:       "a started boost is reported as charging until the next snapshot",
			cableState: indra.CableStateConnected,
			boost:      true,
			overlayAge: -time.Minute,
			want:       chargepoint.StateCharging,
		},
		{
			name:       "a stopped boost is reported as ready to charge until the next snapshot",
			cableState: indra.CableStateCharging,
			boost:      false,
			overlayAge: -time.Minute,
			want:       chargepoint.StateReadyToCharge,
		},
		{
			name:       "an overlay older than the snapshot is ignored",
			cableState: indra.CableStateConnected,
			boost:      true,
			overlayAge: time.Minute,
			want:       chargepoint.StateReadyToCharge,
		},
		{
			name:       "an unplugged cable is never promoted to charging",
			cableState: indra.CableStateNotCharging,
			boost:      true,
			overlayAge: -time.Minute,
			want:       chargepoint.StateDisconnected,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coordinator := &stubCoordinator{snapshot: newSnapshot(&indra.DeviceSnapshot{
				Properties: api.DeviceProperties{
					indra.PropertyCableState: {SettingValue: tt.cableState},
				},
			})}
			coordinator.snapshot.Taken = time.Now().Add(tt.overlayAge)

			overlay := indra.NewCache()
			overlay.SetBoost(tt.boost)

			controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, overlay)

			got, err := controller.ChargepointStateReport()

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestController_MeterReport(t *testing.T) {
	t.Parallel()

	device := &indra.DeviceSnapshot{
		DeviceTelemetry: &api.DeviceTelemetry{Data: api.TelemetryData{
			PowerToEv:        energy(7200),
			ActiveEnergyToEv: energy(21500),
		}},
	}

	tests := []struct {
		name    string
		unit    numericmeter.Unit
		want    float64
		wantErr bool
	}{
		{name: "power in watts", unit: numericmeter.UnitW, want: 7200},
		{name: "cumulative energy in kilowatt-hours", unit: numericmeter.UnitKWh, want: 21.5},
		{name: "unsupported unit", unit: numericmeter.Unit("A"), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coordinator := &stubCoordinator{snapshot: newSnapshot(device)}
			controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, indra.NewCache())

			got, err := controller.MeterReport(tt.unit)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestController_ReportsFailWithoutDevice(t *testing.T) {
	t.Parallel()

	coordinator := &stubCoordinator{snapshot: &indra.Snapshot{Devices: map[string]*indra.DeviceSnapshot{}, Taken: time.Now()}}
	controller := indra.NewController(coordinator, mocks.NewClient(t), test.DeviceUID, indra.NewCache())

	_, err := controller.ChargepointStateReport()

	assert.Error(t, err)
}

func newSnapshot(device *indra.DeviceSnapshot) *indra.Snapshot {
	return &indra.Snapshot{
		Devices: map[string]*indra.DeviceSnapshot{test.DeviceUID: device},
		Taken:   time.Now(),
	}
}
