package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockBlobSource implements interfaces.BlobSource for testing
type MockBlobSource struct {
	mock.Mock
	name string
}

func (m *MockBlobSource) Fetch(ctx context.Context, req interfaces.BlobRequest) (*interfaces.BlobResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.BlobResponse), args.Error(1)
}

func (m *MockBlobSource) Name() string {
	return m.name
}

func (m *MockBlobSource) LocationURI() string {
	return "mock:" + m.name
}

func TestMultiSource_Fetch(t *testing.T) {
	testReq := interfaces.BlobRequest{BlobID: "blob-1"}
	testResp := &interfaces.BlobResponse{Data: []byte("test data")}
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.BlobSource
		expectedResp  *interfaces.BlobResponse
		expectedError error
	}{
		{
			name: "first source successful",
			setupMocks: func() []interfaces.BlobSource {
				mock1 := &MockBlobSource{name: "mock-A"}
				mock1.On("Fetch", mock.Anything, testReq).Return(testResp, nil)

				// This mock should not be called as the first one succeeds
				mock2 := &MockBlobSource{name: "mock-B"}

				return []interfaces.BlobSource{mock1, mock2}
			},
			expectedResp: testResp,
		},
		{
			name: "first source fails, second succeeds",
			setupMocks: func() []interfaces.BlobSource {
				mock1 := &MockBlobSource{name: "mock-A"}
				mock1.On("Fetch", mock.Anything, testReq).Return(nil, testErr)

				mock2 := &MockBlobSource{name: "mock-B"}
				mock2.On("Fetch", mock.Anything, testReq).Return(testResp, nil)

				return []interfaces.BlobSource{mock1, mock2}
			},
			expectedResp: testResp,
		},
		{
			name: "no source holds the blob",
			setupMocks: func() []interfaces.BlobSource {
				mock1 := &MockBlobSource{name: "mock-A"}
				mock1.On("Fetch", mock.Anything, testReq).Return(nil, interfaces.ErrNotFound)

				mock2 := &MockBlobSource{name: "mock-B"}
				mock2.On("Fetch", mock.Anything, testReq).Return(nil, interfaces.ErrNotFound)

				return []interfaces.BlobSource{mock1, mock2}
			},
			expectedError: interfaces.ErrNotFound,
		},
		{
			name: "one missing, one broken",
			setupMocks: func() []interfaces.BlobSource {
				mock1 := &MockBlobSource{name: "mock-A"}
				mock1.On("Fetch", mock.Anything, testReq).Return(nil, interfaces.ErrNotFound)

				mock2 := &MockBlobSource{name: "mock-B"}
				mock2.On("Fetch", mock.Anything, testReq).Return(nil, ErrServerError)

				return []interfaces.BlobSource{mock1, mock2}
			},
			expectedError: ErrServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := tt.setupMocks()
			multi := NewMultiSource(sources, testLogger)

			resp, err := multi.Fetch(context.Background(), testReq)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedResp, resp)

			for _, source := range sources {
				source.(*MockBlobSource).AssertExpectations(t)
			}
		})
	}
}

func TestMultiSource_FailuresAreRetryable(t *testing.T) {
	mock1 := &MockBlobSource{name: "mock-A"}
	mock1.On("Fetch", mock.Anything, mock.Anything).Return(nil, interfaces.ErrNotFound)
	mock2 := &MockBlobSource{name: "mock-B"}
	mock2.On("Fetch", mock.Anything, mock.Anything).Return(nil, ErrServerError)

	_, err := NewMultiSource([]interfaces.BlobSource{mock1, mock2}, testLogger).Fetch(context.Background(), interfaces.BlobRequest{BlobID: "x"})
	assert.ErrorIs(t, err, interfaces.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, interfaces.ErrNotFound)
	assert.True(t, Retryable(err))
}

func TestMultiSource_LocationURI(t *testing.T) {
	multi := NewMultiSource([]interfaces.BlobSource{&MockBlobSource{name: "a"}, &MockBlobSource{name: "b"}}, nil)
	assert.Equal(t, "multi:[mock:a,mock:b]", multi.LocationURI())
	assert.Equal(t, "multi-source", multi.Name())
}
