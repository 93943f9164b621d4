package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/polymedia/polymedia-profile/pkg/profile"
)

// MockProfileLookup is a testify mock of api.ProfileLookup.
type MockProfileLookup struct {
	mock.Mock
}

func (m *MockProfileLookup) GetProfileByOwner(ctx context.Context, address string, useCache bool) (*profile.Profile, error) {
	args := m.Called(ctx, address, useCache)
	p, _ := args.Get(0).(*profile.Profile)
	return p, args.Error(1)
}

func (m *MockProfileLookup) GetProfilesByOwner(ctx context.Context, addresses []string, useCache bool) (*profile.Results, error) {
	args := m.Called(ctx, addresses, useCache)
	r, _ := args.Get(0).(*profile.Results)
	return r, args.Error(1)
}

func (m *MockProfileLookup) GetProfileObjectByID(ctx context.Context, objectID string) (*profile.Profile, error) {
	args := m.Called(ctx, objectID)
	p, _ := args.Get(0).(*profile.Profile)
	return p, args.Error(1)
}
