package item

import (
	"context"

	"catalog/pkg/httperror"
	"catalog/pkg/validator"
)

type GetItemHandler struct {
	service Service
}

type GetItemRequest struct {
	ItemID int64 `params:"id" validate:"required,gt=0"`
}

func NewGetItemHandler(service Service) *GetItemHandler {
	return &GetItemHandler{service: service}
}

func (h GetItemHandler) Handle(ctx context.Context, req *GetItemRequest) (*ItemResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest("item.show.validation_failed", "Invalid item id", nil)
	}

	found, err := h.service.Get(ctx, req.ItemID)
	if err != nil {
		return nil, httperror.FromDomain("item.show", err)
	}

	return &ItemResponse{Item: ToDTO(found)}, nil
}
