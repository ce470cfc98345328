package mock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of the storage.Store interface.
type MockStore struct {
	mock.Mock
}

// Put mocks the Put method.
func (m *MockStore) Put(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

// PutFile mocks the PutFile method.
func (m *MockStore) PutFile(ctx context.Context, key string, localPath string) error {
	args := m.Called(ctx, key, localPath)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// GetFile mocks the GetFile method.
func (m *MockStore) GetFile(ctx context.Context, key string, localPath string) error {
	args := m.Called(ctx, key, localPath)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists mocks the Exists method.
func (m *MockStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// URL mocks the URL method.
func (m *MockStore) URL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// ExpectPut sets up an expectation for Put.
func (m *MockStore) ExpectPut(key string, err error) *mock.Call {
	return m.On("Put", mock.Anything, key, mock.Anything).Return(err)
}

// ExpectPutFile sets up an expectation for PutFile.
func (m *MockStore) ExpectPutFile(key, localPath string, err error) *mock.Call {
	return m.On("PutFile", mock.Anything, key, localPath).Return(err)
}

// ExpectGet sets up an expectation for Get.
func (m *MockStore) ExpectGet(key string, reader io.ReadCloser, err error) *mock.Call {
	return m.On("Get", mock.Anything, key).Return(reader, err)
}

// ExpectAnyPutFile sets up an expectation for any PutFile call.
func (m *MockStore) ExpectAnyPutFile(err error) *mock.Call {
	return m.On("PutFile", mock.Anything, mock.Anything, mock.Anything).Return(err)
}
