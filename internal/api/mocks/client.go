package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
)

// Client is a mock implementation of api.Client.
type Client struct {
	mock.Mock
}

// NewClient creates a new client mock with expectations asserted on test cleanup.
func NewClient(t interface {
	mock.TestingT
	Cleanup(func())
},
) *Client {
	m := &Client{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (_m *Client) Devices() ([]api.Device, error) {
	ret := _m.Called()

	var r0 []api.Device
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]api.Device)
	}

	return r0, ret.Error(1)
}

func (_m *Client) DeviceProperties(deviceUID string) (api.DeviceProperties, error) {
	ret := _m.Called(deviceUID)

	var r0 api.DeviceProperties
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(api.DeviceProperties)
	}

	return r0, ret.Error(1)
}

func (_m *Client) InstallationTelemetry(locationUID string) (api.InstallationTelemetry, error) {
	ret := _m.Called(locationUID)

	var r0 api.InstallationTelemetry
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(api.InstallationTelemetry)
	}

	return r0, ret.Error(1)
}

func (_m *Client) DeviceTelemetry(deviceUID string) (*api.DeviceTelemetry, error) {
	ret := _m.Called(deviceUID)

	var r0 *api.DeviceTelemetry
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*api.DeviceTelemetry)
	}

	return r0, ret.Error(1)
}

func (_m *Client) SolarStatus(deviceUID string) (*api.SolarStatus, error) {
	ret := _m.Called(deviceUID)

	var r0 *api.SolarStatus
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*api.SolarStatus)
	}

	return r0, ret.Error(1)
}

func (_m *Client) EnableSolar(deviceUID string) error {
	return _m.Called(deviceUID).Error(0)
}

func (_m *Client) DisableSolar(deviceUID string) error {
	return _m.Called(deviceUID).Error(0)
}

func (_m *Client) StartBoost(deviceUID string) error {
	return _m.Called(deviceUID).Error(0)
}

func (_m *Client) StopBoost(deviceUID string) error {
	return _m.Called(deviceUID).Error(0)
}

func (_m *Client) Lock(deviceUID string) error {
	return _m.Called(deviceUID).Error(0)
}

func (_m *Client) Unlock(deviceUID string) error {
	return _m.Called(deviceUID).Error(0)
}

func (_m *Client) LatestTransaction(deviceUID string) (*api.Transaction, error) {
	ret := _m.Called(deviceUID)

	var r0 *api.Transaction
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*api.Transaction)
	}

	return r0, ret.Error(1)
}

func (_m *Client) Schedules() ([]api.Schedule, error) {
	ret := _m.Called()

	var r0 []api.Schedule
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]api.Schedule)
	}

	return r0, ret.Error(1)
}

func (_m *Client) Ping() error {
	return _m.Called().Error(0)
}
