package api

import (
	"fmt"
)

// Client is a wrapper around the Indra HTTP Client with authentication capabilities.
type Client interface {
	// Devices returns all chargers registered on the account.
	Devices() ([]Device, error)
	// DeviceProperties retrieves named settings of the selected charger.
	DeviceProperties(deviceUID string) (DeviceProperties, error)
	// InstallationTelemetry retrieves latest installation-level readings.
	InstallationTelemetry(locationUID string) (InstallationTelemetry, error)
	// DeviceTelemetry retrieves latest electrical readings of the selected charger.
	DeviceTelemetry(deviceUID string) (*DeviceTelemetry, error)
	// SolarStatus retrieves the solar matching state of the selected charger.
	SolarStatus(deviceUID string) (*SolarStatus, error)
	// EnableSolar turns solar matching on for the selected charger.
	EnableSolar(deviceUID string) error
	// DisableSolar turns solar matching off for the selected charger.
	DisableSolar(deviceUID string) error
	// StartBoost starts a boost charging session for the selected charger.
	StartBoost(deviceUID string) error
	// StopBoost stops a boost charging session for the selected charger.
	StopBoost(deviceUID string) error
	// Lock locks the selected charger.
	Lock(deviceUID string) error
	// Unlock unlocks the selected charger.
	Unlock(deviceUID string) error
	// LatestTransaction retrieves the most recent charging session of the selected charger, if any.
	LatestTransaction(deviceUID string) (*Transaction, error)
	// Schedules retrieves all charge schedules on the account.
	Schedules() ([]Schedule, error)
	// Ping checks if an external service is available.
	Ping() error
}

type apiClient struct {
	httpClient HTTPClient
	auth       Authenticator
}

// NewAPIClient returns a new API client performing authenticated calls.
func NewAPIClient(http HTTPClient, auth Authenticator) Client {
	return &apiClient{
		httpClient: http,
		auth:       auth,
	}
}

func (a *apiClient) Devices() ([]Device, error) {
	token, err := a.auth.AccessToken()
	if err != nil {
		return nil, a.tokenError(err)
	}

	return a.httpClient.Devices(token)
}

func (a *apiClient) DeviceProperties(deviceUID string) (DeviceProperties, error) {
	token, err := a.auth.AccessToken()
	if err != nil {
		return nil, a.tokenError(err)
	}

	return a.httpClient.DeviceProperties(token, deviceUID)
}

func (a *apiClient) InstallationTelemetry(locationUID string) (InstallationTelemetry, error) {
	token, err := a.auth.AccessToken()
	if err != nil {
		return nil, a.tokenError(err)
	}

	return a.httpClient.InstallationTelemetry(token, locationUID)
}

func (a *apiClient) DeviceTelemetry(deviceUID string) (*DeviceTelemetry, error) {
	token, err := a.auth.AccessToken()
	if err != nil {
		return nil, a.tokenError(err)
	}

	return a.httpClient.DeviceTelemetry(token, deviceUID)
}

func (a *apiClient) SolarStatus(deviceUID string) (*SolarStatus, error) {
	token, err := a.auth.AccessToken()
	if err != nil {
		return nil, a.tokenError(err)
	}

	return a.httpClient.SolarStatus(token, deviceUID)
}

func (a *apiClient) EnableSolar(deviceUID string) error {
	token, err := a.auth.AccessToken()
	if err != nil {
		return a.tokenError(err)
	}

	return a.httpClient.EnableSolar(token, deviceUID)
}

func (a *apiClient) DisableSolar(deviceUID string) error {
	token, err := a.auth.AccessToken()
	if err != nil {
		return a.tokenError(err)
	}

	return a.httpClient.DisableSolar(token, deviceUID)
}

func (a *apiClient) StartBoost(deviceUID string) error {
	token, err := a.auth.AccessToken()
	if err != nil {
		return a.tokenError(err)
	}

	return a.httpClient.StartBoost(token, deviceUID)
}

func (a *apiClient) StopBoost(deviceUID string) error {
	token, err := a.auth.AccessToken()
	if err != nil {
		return a.tokenError(err)
	}

	return a.httpClient.StopBoost(token, deviceUID)
}

func (a *apiClient) Lock(deviceUID string) error {
	token, err := a.auth.AccessToken()
	if err != nil {
		return a.tokenError(err)
	}

	return a.httpClient.Lock(token, deviceUID)
}

func (a *apiClient) Unlock(deviceUID string) error {
	token, err := a.auth.AccessToken()
	if err != nil {
		return a.tokenError(err)
	}

	return a.httpClient.Unlock(token, deviceUID)
}

// LatestTransaction filters account-wide transaction reports down to the selected charger.
func (a *apiClient) LatestTransaction(deviceUID string) (*Transaction, error) {
	token, err := a.auth.AccessToken()
	if err != nil {
		return nil, a.tokenError(err)
	}

	transactions, err := a.httpClient.LatestTransactions(token)
	if err != nil {
		return nil, err
	}

	for i := range transactions {
		if transactions[i].DeviceUID == deviceUID {
			return &transactions[i], nil
		}
	}

	return nil, nil
}

func (a *apiClient) Schedules() ([]Schedule, error) {
	token, err := a.auth.AccessToken()
	if err != nil {
		return nil, a.tokenError(err)
	}

	return a.httpClient.Schedules(token)
}

func (a *apiClient) Ping() error {
	token, err := a.auth.AccessToken()
	if err != nil {
		return a.tokenError(err)
	}

	return a.httpClient.ValidateToken(token)
}

func (a *apiClient) tokenError(err error) error {
	return fmt.Errorf("unable to get access token: %w", err)
}
