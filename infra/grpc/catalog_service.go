package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"catalog/app/item"
	"catalog/domain"
)

type itemReader interface {
	Get(ctx context.Context, id int64) (domain.Item, error)
	GetByCategories(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error)
}

type CatalogServiceServer struct {
	items itemReader
}

var _ CatalogServer = (*CatalogServiceServer)(nil)

func NewCatalogServiceServer(items itemReader) *CatalogServiceServer {
	return &CatalogServiceServer{items: items}
}

func (s *CatalogServiceServer) GetItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "item id must be positive")
	}

	it, err := s.items.Get(ctx, req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(item.ToDTO(it))
}

func (s *CatalogServiceServer) GetItemsByCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	var ids []int64
	for _, v := range fields["ids"].GetListValue().GetValues() {
		n := v.GetNumberValue()
		if n <= 0 || n != float64(int64(n)) {
			return nil, status.Error(codes.InvalidArgument, "ids must be positive integers")
		}
		ids = append(ids, int64(n))
	}
	if len(ids) == 0 {
		return nil, status.Error(codes.InvalidArgument, "ids are required")
	}

	page := domain.NewPageRequest(
		int(fields["page"].GetNumberValue()),
		int(fields["pageSize"].GetNumberValue()),
	)
	result, err := s.items.GetByCategories(ctx, ids, page)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(domain.MapPage(result, item.ToDTO))
}

func mapError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidUpdateRequest),
		errors.Is(err, domain.ErrInvalidPatch),
		errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInUse):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return status.Error(codes.Unavailable, "dependency unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// toStruct converts v through its JSON form so gRPC clients see the same shape as HTTP clients.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
