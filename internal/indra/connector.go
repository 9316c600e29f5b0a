package indra

import (
	"github.com/futurehomeno/cliffhanger/adapter"
	"github.com/michalkurzeja/go-clock"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
	"github.com/futurehomeno/edge-indra-adapter/internal/config"
)

// staleSnapshotFactor is the number of polling intervals after which the last
// snapshot is considered stale and the charger is reported as disconnected.
const staleSnapshotFactor = 2

type connector struct {
	coordinator Coordinator
	httpClient  api.Client
	confSrv     *config.Service

	deviceUID string
}

// NewConnector returns a connector reporting cloud connectivity of a single charger.
func NewConnector(coordinator Coordinator, httpClient api.Client, deviceUID string, confSrv *config.Service) adapter.Connector {
	return &connector{
		coordinator: coordinator,
		httpClient:  httpClient,
		deviceUID:   deviceUID,
		confSrv:     confSrv,
	}
}

func (c *connector) Connect(_ adapter.Thing) {}

func (c *connector) Disconnect(_ adapter.Thing) {}

func (c *connector) Connectivity() *adapter.ConnectivityDetails {
	ret := adapter.ConnectivityDetails{
		ConnectionStatus: adapter.ConnectionStatusDown,
		ConnectionType:   adapter.ConnectionTypeIndirect,
	}

	if c.snapshotFresh() {
		ret.ConnectionStatus = adapter.ConnectionStatusUp
	}

	return &ret
}

func (c *connector) Ping() *adapter.PingDetails {
	if err := c.httpClient.Ping(); err != nil {
		return &adapter.PingDetails{
			Status: adapter.PingResultFailed,
		}
	}

	return &adapter.PingDetails{
		Status: adapter.PingResultSuccess,
	}
}

func (c *connector) snapshotFresh() bool {
	snapshot := c.coordinator.Snapshot()
	if snapshot == nil || snapshot.Device(c.deviceUID) == nil {
		return false
	}

	maxAge := staleSnapshotFactor * c.confSrv.GetPollingInterval()

	return clock.Now().UTC().Sub(snapshot.Taken) < maxAge
}
