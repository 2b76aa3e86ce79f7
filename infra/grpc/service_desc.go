package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	catalogServiceName             = "catalog.v1.CatalogService"
	getItemFullMethod              = "/" + catalogServiceName + "/GetItem"
	getItemsByCategoriesFullMethod = "/" + catalogServiceName + "/GetItemsByCategories"
)

// CatalogServer is the read-only catalog API exposed to other services.
// Requests and responses use well-known protobuf types so no generated code is needed.
type CatalogServer interface {
	GetItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	// GetItemsByCategories expects {"ids": [...], "page": n, "pageSize": n}.
	GetItemsByCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: catalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetItem", Handler: getItemHandler},
		{MethodName: "GetItemsByCategories", Handler: getItemsByCategoriesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

func getItemHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getItemFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).GetItem(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getItemsByCategoriesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetItemsByCategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getItemsByCategoriesFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).GetItemsByCategories(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogClient calls CatalogServer over a client connection.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) GetItem(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getItemFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetItemsByCategories(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getItemsByCategoriesFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
