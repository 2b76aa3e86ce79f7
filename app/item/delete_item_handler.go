package item

import (
	"context"

	"catalog/pkg/httperror"
	"catalog/pkg/validator"
)

type DeleteItemHandler struct {
	service Service
}

func NewDeleteItemHandler(service Service) *DeleteItemHandler {
	return &DeleteItemHandler{
		service: service,
	}
}

type DeleteItemRequest struct {
	ItemID int64 `params:"id" validate:"required,gt=0"`
}

type DeleteItemResponse struct {
}

func (h DeleteItemHandler) Handle(ctx context.Context, req *DeleteItemRequest) (*DeleteItemResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest("item.destroy.validation_failed", "Invalid item id", nil)
	}

	if err := h.service.Delete(ctx, req.ItemID); err != nil {
		return nil, httperror.FromDomain("item.destroy", err)
	}

	return nil, httperror.NoContent(
		"item.destroy.success",
		"Item deleted successfully",
		nil,
	)
}
