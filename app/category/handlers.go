package category

import (
	"context"

	"catalog/domain"
	"catalog/pkg/httperror"
	"catalog/pkg/validator"
)

type CreateCategoryHandler struct {
	service Service
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

type CategoryResponse struct {
	Category CategoryDTO `json:"category"`
}

func NewCreateCategoryHandler(service Service) *CreateCategoryHandler {
	return &CreateCategoryHandler{service: service}
}

func (h CreateCategoryHandler) Handle(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest(
			"category.create.validation_failed",
			"Validation failed for the request",
			validator.FormatValidationErrors(err),
		)
	}

	created, err := h.service.Create(ctx, req.Name)
	if err != nil {
		return nil, httperror.FromDomain("category.create", err)
	}

	return &CategoryResponse{Category: ToDTO(created)}, nil
}

type GetCategoryHandler struct {
	service Service
}

type GetCategoryRequest struct {
	CategoryID int64 `params:"id" validate:"required,gt=0"`
}

func NewGetCategoryHandler(service Service) *GetCategoryHandler {
	return &GetCategoryHandler{service: service}
}

func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*CategoryResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest("category.show.validation_failed", "Invalid category id", nil)
	}

	found, err := h.service.Get(ctx, req.CategoryID)
	if err != nil {
		return nil, httperror.FromDomain("category.show", err)
	}

	return &CategoryResponse{Category: ToDTO(found)}, nil
}

type GetCategoriesHandler struct {
	service Service
}

type GetCategoriesRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

type GetCategoriesResponse = domain.Page[CategoryDTO]

func NewGetCategoriesHandler(service Service) *GetCategoriesHandler {
	return &GetCategoriesHandler{service: service}
}

func (h GetCategoriesHandler) Handle(ctx context.Context, req *GetCategoriesRequest) (*GetCategoriesResponse, error) {
	page, err := h.service.List(ctx, domain.NewPageRequest(req.Page, req.PageSize))
	if err != nil {
		return nil, httperror.FromDomain("category.index", err)
	}

	res := domain.MapPage(page, ToDTO)
	return &res, nil
}

type UpdateCategoryHandler struct {
	service Service
}

// UpdateCategoryRequest carries a merge patch decoded by the HTTP layer.
type UpdateCategoryRequest struct {
	CategoryID int64                 `params:"id" validate:"required,gt=0"`
	Patch      *domain.CategoryPatch `json:"-"`
}

func NewUpdateCategoryHandler(service Service) *UpdateCategoryHandler {
	return &UpdateCategoryHandler{service: service}
}

func (h UpdateCategoryHandler) Handle(ctx context.Context, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest("category.update.validation_failed", "Invalid category id", nil)
	}

	updated, err := h.service.Update(ctx, req.CategoryID, req.Patch)
	if err != nil {
		return nil, httperror.FromDomain("category.update", err)
	}

	return &CategoryResponse{Category: ToDTO(updated)}, nil
}

type DeleteCategoryHandler struct {
	service Service
}

type DeleteCategoryRequest struct {
	CategoryID int64 `params:"id" validate:"required,gt=0"`
}

type DeleteCategoryResponse struct{}

func NewDeleteCategoryHandler(service Service) *DeleteCategoryHandler {
	return &DeleteCategoryHandler{service: service}
}

func (h DeleteCategoryHandler) Handle(ctx context.Context, req *DeleteCategoryRequest) (*DeleteCategoryResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, httperror.BadRequest("category.destroy.validation_failed", "Invalid category id", nil)
	}

	if err := h.service.Delete(ctx, req.CategoryID); err != nil {
		return nil, httperror.FromDomain("category.destroy", err)
	}

	return nil, httperror.NoContent("category.destroy.success", "Category deleted successfully", nil)
}
