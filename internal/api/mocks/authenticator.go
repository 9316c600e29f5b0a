package mocks

import (
	"github.com/stretchr/testify/mock"
)

// Authenticator is a mock implementation of api.Authenticator.
type Authenticator struct {
	mock.Mock
}

// NewAuthenticator creates a new authenticator mock with expectations asserted on test cleanup.
func NewAuthenticator(t interface {
	mock.TestingT
	Cleanup(func())
},
) *Authenticator {
	m := &Authenticator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (_m *Authenticator) Login(email string) error {
	return _m.Called(email).Error(0)
}

func (_m *Authenticator) AccessToken() (string, error) {
	ret := _m.Called()

	return ret.String(0), ret.Error(1)
}

func (_m *Authenticator) Refresh() error {
	return _m.Called().Error(0)
}

func (_m *Authenticator) Logout() error {
	return _m.Called().Error(0)
}
