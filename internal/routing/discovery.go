package routing

import (
	"github.com/futurehomeno/cliffhanger/discovery"

	"github.com/futurehomeno/edge-indra-adapter/internal/indra"
)

// GetDiscoveryResource returns a service discovery configuration.
func GetDiscoveryResource() *discovery.Resource {
	return &discovery.Resource{
		ResourceName:           indra.ServiceName,
		ResourceType:           discovery.ResourceTypeAd,
		ResourceFullName:       "Indra",
		Description:            "EV chargers from Indra",
		Author:                 "support@futurehome.no",
		IsInstanceConfigurable: false,
		Version:                "1",
		InstanceID:             "1",
		AdapterInfo: discovery.AdapterInfo{
			Technology:            "indra",
			FwVersion:             "all",
			NetworkManagementType: "inclusion_exclusion",
		},
	}
}
