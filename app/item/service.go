package item

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"catalog/app/category"
	"catalog/domain"
)

type Service interface {
	Create(ctx context.Context, draft domain.ItemSnapshot, image *domain.Image) (domain.Item, error)
	Get(ctx context.Context, id int64) (domain.Item, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Item], error)
	GetByCategories(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error)
	GetByPartialName(ctx context.Context, fragment string, page domain.PageRequest) (domain.Page[domain.Item], error)
	Update(ctx context.Context, id int64, patch *domain.ItemPatch, image *domain.Image) (domain.Item, error)
	Delete(ctx context.Context, id int64) error
}

// ItemDTO is the wire shape of an item.
type ItemDTO struct {
	ID              int64                  `json:"id"`
	Name            string                 `json:"name"`
	Price           decimal.Decimal        `json:"price"`
	Description     string                 `json:"description"`
	LongDescription string                 `json:"longDescription"`
	Categories      []category.CategoryDTO `json:"categories"`
	ImageURI        *string                `json:"imageUri"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func ToDTO(it domain.Item) ItemDTO {
	categories := make([]category.CategoryDTO, 0, len(it.Categories))
	for _, c := range it.Categories {
		categories = append(categories, category.ToDTO(c))
	}
	return ItemDTO{
		ID:              it.ID,
		Name:            it.Name,
		Price:           it.Price,
		Description:     it.Description,
		LongDescription: it.LongDescription,
		Categories:      categories,
		ImageURI:        it.ImageURI,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

type ItemResponse struct {
	Item ItemDTO `json:"item"`
}

type ItemsResponse = domain.Page[ItemDTO]

func toItemsResponse(page domain.Page[domain.Item]) *ItemsResponse {
	res := domain.MapPage(page, ToDTO)
	return &res
}
