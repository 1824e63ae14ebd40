package mocks

import (
	"context"

	"github.com/brettbedarf/treefs"
	"github.com/stretchr/testify/mock"
)

// MockContentSource implements treefs.ContentSource for testing across packages
type MockContentSource struct {
	mock.Mock
}

func (m *MockContentSource) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var _ treefs.ContentSource = (*MockContentSource)(nil)

// MockSourceProvider implements treefs.SourceProvider for testing across packages
type MockSourceProvider struct {
	mock.Mock
}

func (m *MockSourceProvider) NewSource(raw []byte) (treefs.ContentSource, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(treefs.ContentSource), args.Error(1)
}

var _ treefs.SourceProvider = (*MockSourceProvider)(nil)
