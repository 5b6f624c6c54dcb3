package registry

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// MockRegistry mocks the interfaces.RegistryClient interface
type MockRegistry struct {
	mock.Mock
}

// GetObject mocks the GetObject method
func (m *MockRegistry) GetObject(ctx context.Context, id interfaces.ObjectID) (*interfaces.ObjectRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*interfaces.ObjectRecord)
	return record, args.Error(1)
}

// GetDynamicFields mocks the GetDynamicFields method
func (m *MockRegistry) GetDynamicFields(ctx context.Context, parentID interfaces.ObjectID, cursor *string) (*interfaces.DynamicFieldPage, error) {
	args := m.Called(ctx, parentID, cursor)
	page, _ := args.Get(0).(*interfaces.DynamicFieldPage)
	return page, args.Error(1)
}

// MultiGetObjects mocks the MultiGetObjects method
func (m *MockRegistry) MultiGetObjects(ctx context.Context, ids []interfaces.ObjectID) ([]interfaces.ObjectResult, error) {
	args := m.Called(ctx, ids)
	results, _ := args.Get(0).([]interfaces.ObjectResult)
	return results, args.Error(1)
}

// ResolveName mocks the ResolveName method
func (m *MockRegistry) ResolveName(ctx context.Context, name string) (*interfaces.ObjectID, error) {
	args := m.Called(ctx, name)
	id, _ := args.Get(0).(*interfaces.ObjectID)
	return id, args.Error(1)
}

// MockNameService mocks the interfaces.NameService interface
type MockNameService struct {
	mock.Mock
}

// ResolveName mocks the ResolveName method
func (m *MockNameService) ResolveName(ctx context.Context, name string) (interfaces.ObjectID, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(interfaces.ObjectID), args.Error(1)
}

func (m *MockNameService) Name() string {
	return "mock"
}
