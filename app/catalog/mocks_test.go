package catalog_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"catalog/domain"
	"catalog/pkg/events"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id int64) (domain.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *MockItemRepository) ExistsByExample(ctx context.Context, probe domain.Item, excludeID int64) (bool, error) {
	args := m.Called(ctx, probe, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item domain.Item) (domain.Item, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *MockItemRepository) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepository) FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Item], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.Page[domain.Item]), args.Error(1)
}

func (m *MockItemRepository) FindByCategoryIDs(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error) {
	args := m.Called(ctx, ids, page)
	return args.Get(0).(domain.Page[domain.Item]), args.Error(1)
}

func (m *MockItemRepository) FindByNameContaining(ctx context.Context, fragment string, page domain.PageRequest) (domain.Page[domain.Item], error) {
	args := m.Called(ctx, fragment, page)
	return args.Get(0).(domain.Page[domain.Item]), args.Error(1)
}

func (m *MockItemRepository) ImageInUse(ctx context.Context, uri string) (bool, error) {
	args := m.Called(ctx, uri)
	return args.Bool(0), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id int64) (domain.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (domain.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category domain.Category) (domain.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.Page[domain.Category]), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, image domain.Image, key string) (string, error) {
	args := m.Called(ctx, image, key)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, uri string) error {
	return m.Called(ctx, uri).Error(0)
}

// recordingPublisher keeps every published event name in order.
type recordingPublisher struct {
	names []string
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event *events.Event, _ events.Headers) error {
	p.names = append(p.names, event.Event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }
