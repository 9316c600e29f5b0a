package test

// Shared fixtures used across package tests.
var (
	// DeviceUID is the charger identifier used in tests.
	DeviceUID = "INDRA-0001"
	// LocationUID is the installation identifier used in tests.
	LocationUID = "LOC-0001"
	// AccessToken is the access token used in tests.
	AccessToken = "test.access.token"
)
