package item

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog/domain"
	"catalog/pkg/httperror"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, draft domain.ItemSnapshot, image *domain.Image) (domain.Item, error) {
	args := m.Called(ctx, draft, image)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id int64) (domain.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *mockService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Item], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.Page[domain.Item]), args.Error(1)
}

func (m *mockService) GetByCategories(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error) {
	args := m.Called(ctx, ids, page)
	return args.Get(0).(domain.Page[domain.Item]), args.Error(1)
}

func (m *mockService) GetByPartialName(ctx context.Context, fragment string, page domain.PageRequest) (domain.Page[domain.Item], error) {
	args := m.Called(ctx, fragment, page)
	return args.Get(0).(domain.Page[domain.Item]), args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id int64, patch *domain.ItemPatch, image *domain.Image) (domain.Item, error) {
	args := m.Called(ctx, id, patch, image)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func asHTTPError(t *testing.T, err error) *httperror.Error {
	t.Helper()
	var httpErr *httperror.Error
	require.ErrorAs(t, err, &httpErr)
	return httpErr
}

func TestCreateItemHandler(t *testing.T) {
	tests := []struct {
		name       string
		req        CreateItemRequest
		setup      func(m *mockService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			req:  CreateItemRequest{Name: "Widget", Price: decimal.RequireFromString("9.99"), Categories: []domain.CategoryRef{{Name: "Tools"}}},
			setup: func(m *mockService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(d domain.ItemSnapshot) bool {
					return d.Name == "Widget" && len(d.Categories) == 1
				}), (*domain.Image)(nil)).Return(domain.Item{
					ID:         1,
					Name:       "Widget",
					Categories: []domain.Category{{ID: 1, Name: "Tools"}},
				}, nil)
			},
		},
		{
			name:       "blank_name",
			req:        CreateItemRequest{Name: "  "},
			setup:      func(m *mockService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "item.create.validation_failed",
		},
		{
			name:       "negative_price",
			req:        CreateItemRequest{Name: "Widget", Price: decimal.NewFromInt(-1)},
			setup:      func(m *mockService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "item.create.validation_failed",
		},
		{
			name: "duplicate",
			req:  CreateItemRequest{Name: "Widget"},
			setup: func(m *mockService) {
				m.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(domain.Item{}, domain.AlreadyExists("item", "fp"))
			},
			wantStatus: http.StatusConflict,
			wantCode:   "item.create.already_exists",
		},
		{
			name: "unknown_category",
			req:  CreateItemRequest{Name: "Widget", Categories: []domain.CategoryRef{{Name: "Nope"}}},
			setup: func(m *mockService) {
				m.On("Create", mock.Anything, mock.Anything, mock.Anything).
					Return(domain.Item{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.NotFound("category", "Nope")))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "item.create.invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setup(svc)

			res, err := NewCreateItemHandler(svc).Handle(context.Background(), &tt.req)

			if tt.wantCode != "" {
				httpErr := asHTTPError(t, err)
				assert.Equal(t, tt.wantStatus, httpErr.Status)
				assert.Equal(t, tt.wantCode, httpErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Item.ID)
			assert.Len(t, res.Item.Categories, 1)
			assert.Nil(t, res.Item.ImageURI)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdateItemHandler(t *testing.T) {
	patch, err := domain.DecodeItemPatch([]byte(`{"price": 12.50}`))
	require.NoError(t, err)

	t.Run("not_found", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Update", mock.Anything, int64(5), patch, (*domain.Image)(nil)).Return(domain.Item{}, domain.NotFound("item", int64(5)))

		_, err := NewUpdateItemHandler(svc).Handle(context.Background(), &UpdateItemRequest{ItemID: 5, Patch: patch})

		httpErr := asHTTPError(t, err)
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, "item.update.not_found", httpErr.Code)
	})

	t.Run("invalid_id", func(t *testing.T) {
		_, err := NewUpdateItemHandler(new(mockService)).Handle(context.Background(), &UpdateItemRequest{ItemID: 0})
		assert.Equal(t, http.StatusBadRequest, asHTTPError(t, err).Status)
	})

	t.Run("updated", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Update", mock.Anything, int64(5), patch, (*domain.Image)(nil)).
			Return(domain.Item{ID: 5, Price: decimal.RequireFromString("12.50")}, nil)

		res, err := NewUpdateItemHandler(svc).Handle(context.Background(), &UpdateItemRequest{ItemID: 5, Patch: patch})

		require.NoError(t, err)
		assert.True(t, res.Item.Price.Equal(decimal.RequireFromString("12.5")))
		assert.NotNil(t, res.Item.Categories)
	})
}

func TestDeleteItemHandler(t *testing.T) {
	svc := new(mockService)
	svc.On("Delete", mock.Anything, int64(7)).Return(nil)

	res, err := NewDeleteItemHandler(svc).Handle(context.Background(), &DeleteItemRequest{ItemID: 7})

	assert.Nil(t, res)
	assert.Equal(t, http.StatusNoContent, asHTTPError(t, err).Status)
}

func TestGetItemsByCategoriesHandler(t *testing.T) {
	page := domain.NewPageRequest(1, 10)

	t.Run("parses_ids", func(t *testing.T) {
		svc := new(mockService)
		svc.On("GetByCategories", mock.Anything, []int64{1, 2}, page).
			Return(domain.NewPage([]domain.Item{{ID: 3}}, page, 1), nil)

		res, err := NewGetItemsByCategoriesHandler(svc).Handle(context.Background(), &GetItemsByCategoriesRequest{IDs: "1, 2"})

		require.NoError(t, err)
		assert.Len(t, res.Items, 1)
	})

	t.Run("rejects_garbage", func(t *testing.T) {
		_, err := NewGetItemsByCategoriesHandler(new(mockService)).Handle(context.Background(), &GetItemsByCategoriesRequest{IDs: "1,x"})
		assert.Equal(t, "item.by_categories.invalid_ids", asHTTPError(t, err).Code)
	})

	t.Run("empty_result", func(t *testing.T) {
		svc := new(mockService)
		svc.On("GetByCategories", mock.Anything, []int64{4}, page).
			Return(domain.Page[domain.Item]{}, domain.NotFound("item", "categories [4]"))

		_, err := NewGetItemsByCategoriesHandler(svc).Handle(context.Background(), &GetItemsByCategoriesRequest{IDs: "4"})
		assert.Equal(t, http.StatusNotFound, asHTTPError(t, err).Status)
	})
}

func TestSearchItemsHandler_StoreDown(t *testing.T) {
	svc := new(mockService)
	svc.On("GetByPartialName", mock.Anything, "wid", domain.NewPageRequest(2, 5)).
		Return(domain.Page[domain.Item]{}, domain.Unavailable("entity store", errors.New("eof")))

	_, err := NewSearchItemsHandler(svc).Handle(context.Background(), &SearchItemsRequest{Name: "wid", Page: 2, PageSize: 5})

	assert.Equal(t, http.StatusServiceUnavailable, asHTTPError(t, err).Status)
}
