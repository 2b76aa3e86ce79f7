package category

import (
	"context"
	"time"

	"catalog/domain"
)

type Service interface {
	Create(ctx context.Context, name string) (domain.Category, error)
	Get(ctx context.Context, id int64) (domain.Category, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error)
	Update(ctx context.Context, id int64, patch *domain.CategoryPatch) (domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToDTO(c domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
