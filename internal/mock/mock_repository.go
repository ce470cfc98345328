// Package mock provides testify mocks for the repository and storage
// interfaces.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/runtime-analysis/internal/repository"
	"github.com/runtime-analysis/pkg/model"
)

// MockSampleRepository is a mock implementation of the SampleRepository
// interface.
type MockSampleRepository struct {
	mock.Mock
}

// SaveSample mocks the SaveSample method.
func (m *MockSampleRepository) SaveSample(ctx context.Context, sample *model.HeapSample, reportKey string) (int64, error) {
	args := m.Called(ctx, sample, reportKey)
	return args.Get(0).(int64), args.Error(1)
}

// GetSampleByID mocks the GetSampleByID method.
func (m *MockSampleRepository) GetSampleByID(ctx context.Context, id int64) (*repository.StoredSample, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.StoredSample), args.Error(1)
}

// ListSamples mocks the ListSamples method.
func (m *MockSampleRepository) ListSamples(ctx context.Context, space string, limit int) ([]*repository.StoredSample, error) {
	args := m.Called(ctx, space, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.StoredSample), args.Error(1)
}

// LatestSample mocks the LatestSample method.
func (m *MockSampleRepository) LatestSample(ctx context.Context, space string) (*repository.StoredSample, error) {
	args := m.Called(ctx, space)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.StoredSample), args.Error(1)
}

// DeleteSample mocks the DeleteSample method.
func (m *MockSampleRepository) DeleteSample(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ExpectSaveSample sets up an expectation for SaveSample.
func (m *MockSampleRepository) ExpectSaveSample(id int64, err error) *mock.Call {
	return m.On("SaveSample", mock.Anything, mock.Anything, mock.Anything).Return(id, err)
}
