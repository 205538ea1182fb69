// Package mocks provides test doubles for the google client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	google "github.com/gimiv/stayfull-research/pkg/google"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// TextSearch provides a mock function with given fields: ctx, req
func (_m *MockClient) TextSearch(ctx context.Context, req google.TextSearchRequest) (*google.TextSearchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for TextSearch")
	}

	var r0 *google.TextSearchResponse
	if rf, ok := ret.Get(0).(func(context.Context, google.TextSearchRequest) (*google.TextSearchResponse, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*google.TextSearchResponse)
	}
	return r0, ret.Error(1)
}

// TimeZone provides a mock function with given fields: ctx, lat, lng
func (_m *MockClient) TimeZone(ctx context.Context, lat float64, lng float64) (*google.TimeZoneResponse, error) {
	ret := _m.Called(ctx, lat, lng)

	if len(ret) == 0 {
		panic("no return value specified for TimeZone")
	}

	var r0 *google.TimeZoneResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*google.TimeZoneResponse)
	}
	return r0, ret.Error(1)
}

// PhotoURL provides a mock function with given fields: photoName, maxWidthPx
func (_m *MockClient) PhotoURL(photoName string, maxWidthPx int) string {
	ret := _m.Called(photoName, maxWidthPx)

	if len(ret) == 0 {
		panic("no return value specified for PhotoURL")
	}

	return ret.String(0)
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
