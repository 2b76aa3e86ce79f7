package item

import (
	"context"

	"github.com/shopspring/decimal"

	"catalog/domain"
	"catalog/pkg/httperror"
	"catalog/pkg/validator"
)

type CreateItemHandler struct {
	service Service
}

// CreateItemRequest is the item draft. Image is filled from a multipart
// upload by the HTTP layer.
type CreateItemRequest struct {
	Name            string               `json:"name" validate:"required,notblank,max=255"`
	Price           decimal.Decimal      `json:"price" validate:"gte=0"`
	Description     string               `json:"description" validate:"max=1000"`
	LongDescription string               `json:"longDescription" validate:"max=10000"`
	Categories      []domain.CategoryRef `json:"categories" validate:"max=50"`
	Image           *domain.Image        `json:"-"`
}

func NewCreateItemHandler(service Service) *CreateItemHandler {
	return &CreateItemHandler{
		service: service,
	}
}

func (h CreateItemHandler) Handle(ctx context.Context, req *CreateItemRequest) (*ItemResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest(
			"item.create.validation_failed",
			"Validation failed for the request",
			validator.FormatValidationErrors(err),
		)
	}

	created, err := h.service.Create(ctx, req.draft(), req.Image)
	if err != nil {
		return nil, httperror.FromDomain("item.create", err)
	}

	return &ItemResponse{Item: ToDTO(created)}, nil
}

func (r CreateItemRequest) draft() domain.ItemSnapshot {
	return domain.ItemSnapshot{
		Name:            r.Name,
		Price:           r.Price,
		Description:     r.Description,
		LongDescription: r.LongDescription,
		Categories:      r.Categories,
	}
}
