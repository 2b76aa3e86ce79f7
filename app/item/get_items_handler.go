package item

import (
	"context"
	"strconv"
	"strings"

	"catalog/domain"
	"catalog/pkg/httperror"
)

type GetItemsHandler struct {
	service Service
}

func NewGetItemsHandler(service Service) *GetItemsHandler {
	return &GetItemsHandler{service: service}
}

type GetItemsRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

func (h GetItemsHandler) Handle(ctx context.Context, req *GetItemsRequest) (*ItemsResponse, error) {
	page, err := h.service.List(ctx, domain.NewPageRequest(req.Page, req.PageSize))
	if err != nil {
		return nil, httperror.FromDomain("item.index", err)
	}
	return toItemsResponse(page), nil
}

type SearchItemsHandler struct {
	service Service
}

func NewSearchItemsHandler(service Service) *SearchItemsHandler {
	return &SearchItemsHandler{service: service}
}

type SearchItemsRequest struct {
	Name     string `query:"name"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

func (h SearchItemsHandler) Handle(ctx context.Context, req *SearchItemsRequest) (*ItemsResponse, error) {
	page, err := h.service.GetByPartialName(ctx, req.Name, domain.NewPageRequest(req.Page, req.PageSize))
	if err != nil {
		return nil, httperror.FromDomain("item.search", err)
	}
	return toItemsResponse(page), nil
}

type GetItemsByCategoriesHandler struct {
	service Service
}

func NewGetItemsByCategoriesHandler(service Service) *GetItemsByCategoriesHandler {
	return &GetItemsByCategoriesHandler{service: service}
}

// GetItemsByCategoriesRequest takes category ids as a comma separated list.
type GetItemsByCategoriesRequest struct {
	IDs      string `query:"ids"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

func (h GetItemsByCategoriesHandler) Handle(ctx context.Context, req *GetItemsByCategoriesRequest) (*ItemsResponse, error) {
	ids, err := parseIDs(req.IDs)
	if err != nil {
		return nil, httperror.BadRequest(
			"item.by_categories.invalid_ids",
			"ids must be a comma separated list of positive integers",
			map[string]string{"ids": req.IDs},
		)
	}

	page, err := h.service.GetByCategories(ctx, ids, domain.NewPageRequest(req.Page, req.PageSize))
	if err != nil {
		return nil, httperror.FromDomain("item.by_categories", err)
	}
	return toItemsResponse(page), nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id < 1 {
			return nil, strconv.ErrSyntax
		}
		ids = append(ids, id)
	}
	return ids, nil
}
