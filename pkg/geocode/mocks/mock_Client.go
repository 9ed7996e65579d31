// Package mocks provides test doubles for the geocode client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/travelplaner/travelplaner/internal/model"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ReverseGeocode provides a mock function with given fields: ctx, coords
func (_m *MockClient) ReverseGeocode(ctx context.Context, coords model.Coordinates) (*model.AddressRecord, error) {
	ret := _m.Called(ctx, coords)

	if len(ret) == 0 {
		panic("no return value specified for ReverseGeocode")
	}

	var r0 *model.AddressRecord
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Coordinates) (*model.AddressRecord, error)); ok {
		return rf(ctx, coords)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.AddressRecord)
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Coordinates) error); ok {
		r1 = rf(ctx, coords)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
