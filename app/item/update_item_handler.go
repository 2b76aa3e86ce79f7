package item

import (
	"context"

	"catalog/domain"
	"catalog/pkg/httperror"
	"catalog/pkg/validator"
)

type UpdateItemHandler struct {
	service Service
}

// UpdateItemRequest holds an already decoded merge patch and an optional
// replacement image. Either may be nil.
type UpdateItemRequest struct {
	ItemID int64             `params:"id" validate:"required,gt=0"`
	Patch  *domain.ItemPatch `json:"-"`
	Image  *domain.Image     `json:"-"`
}

func NewUpdateItemHandler(service Service) *UpdateItemHandler {
	return &UpdateItemHandler{
		service: service,
	}
}

func (h UpdateItemHandler) Handle(ctx context.Context, req *UpdateItemRequest) (*ItemResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest(
			"item.update.validation_failed",
			"Validation failed for the request",
			validator.FormatValidationErrors(err),
		)
	}

	updated, err := h.service.Update(ctx, req.ItemID, req.Patch, req.Image)
	if err != nil {
		return nil, httperror.FromDomain("item.update", err)
	}

	return &ItemResponse{Item: ToDTO(updated)}, nil
}
