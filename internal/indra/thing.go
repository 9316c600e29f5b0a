package indra

import (
	"fmt"
	"time"

	"github.com/futurehomeno/cliffhanger/adapter"
	cliffCache "github.com/futurehomeno/cliffhanger/adapter/cache"
	"github.com/futurehomeno/cliffhanger/adapter/service/chargepoint"
	"github.com/futurehomeno/cliffhanger/adapter/service/numericmeter"
	"github.com/futurehomeno/fimpgo/fimptype"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
	"github.com/futurehomeno/edge-indra-adapter/internal/config"
)

// Info is an object representing charger persisted information.
type Info struct {
	DeviceUID       string  `json:"deviceUID"`
	Model           string  `json:"model"`
	CapacityKw      float64 `json:"capacityKw"`
	FirmwareVersion string  `json:"firmwareVersion"`
}

type thingFactory struct {
	client      api.Client
	cfgService  *config.Service
	coordinator Coordinator
}

// NewThingFactory returns a new instance of adapter.ThingFactory.
func NewThingFactory(client api.Client, cfgService *config.Service, coordinator Coordinator) adapter.ThingFactory {
	return &thingFactory{
		client:      client,
		cfgService:  cfgService,
		coordinator: coordinator,
	}
}

func (t *thingFactory) Create(ad adapter.Adapter, publisher adapter.Publisher, thingState adapter.ThingState) (adapter.Thing, error) {
	info := &Info{}

	if err := thingState.Info(info); err != nil {
		return nil, fmt.Errorf("factory: failed to retrieve information: %w", err)
	}

	overlay := NewCache()
	controller := NewController(t.coordinator, t.client, info.DeviceUID, overlay)

	groups := []string{"ch_0"}
	services := []adapter.Service{
		t.newChargepointService(publisher, ad, thingState, groups, controller),
		t.newMeterElecService(publisher, ad, thingState, groups, controller),
	}

	return adapter.NewThing(publisher, thingState, &adapter.ThingConfig{
		Connector:       NewConnector(t.coordinator, t.client, info.DeviceUID, t.cfgService),
		InclusionReport: t.inclusionReport(info, thingState, groups),
	}, services...), nil
}

func (t *thingFactory) inclusionReport(info *Info, thingState adapter.ThingState, groups []string) *fimptype.ThingInclusionReport {
	product := info.Model
	if product == "" {
		product = "Smart Charger"
	}

	if info.CapacityKw > 0 {
		product = fmt.Sprintf("%s %gkW", product, info.CapacityKw)
	}

	return &fimptype.ThingInclusionReport{
		Address:        thingState.Address(),
		ProductHash:    "Indra - " + product,
		ProductName:    product,
		DeviceId:       info.DeviceUID,
		CommTechnology: "cloud",
		ManufacturerId: "Indra",
		PowerSource:    "ac",
		SwVersion:      info.FirmwareVersion,
		WakeUpInterval: "-1",
		Groups:         groups,
	}
}

func (t *thingFactory) chargepointSpecification(ad adapter.Adapter, thingState adapter.ThingState, groups []string) *fimptype.Service {
	return chargepoint.Specification(
		ad.Name(),
		ad.Address(),
		thingState.Address(),
		groups,
		SupportedChargepointStates(),
		chargepoint.WithChargingModes(SupportedChargingModes()...),
	)
}

func (t *thingFactory) meterElecSpecification(ad adapter.Adapter, thingState adapter.ThingState, groups []string) *fimptype.Service {
	return numericmeter.Specification(
		numericmeter.MeterElec,
		ad.Name(),
		ad.Address(),
		thingState.Address(),
		groups,
		[]numericmeter.Unit{numericmeter.UnitW, numericmeter.UnitKWh},
	)
}

func (t *thingFactory) newChargepointService(
	publisher adapter.ServicePublisher,
	ad adapter.Adapter,
	thingState adapter.ThingState,
	groups []string,
	controller Controller,
) adapter.Service {
	return chargepoint.NewService(publisher, &chargepoint.Config{
		Specification: t.chargepointSpecification(ad, thingState, groups),
		Controller:    controller,
	})
}

func (t *thingFactory) newMeterElecService(
	publisher adapter.ServicePublisher,
	ad adapter.Adapter,
	thingState adapter.ThingState,
	groups []string,
	controller Controller,
) adapter.Service {
	return numericmeter.NewService(publisher, &numericmeter.Config{
		Specification:     t.meterElecSpecification(ad, thingState, groups),
		Reporter:          controller,
		ReportingStrategy: cliffCache.ReportAtLeastEvery(time.Minute),
	})
}
