package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"catalog/domain"
)

type mockItems struct{ mock.Mock }

func (m *mockItems) Get(ctx context.Context, id int64) (domain.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *mockItems) GetByCategories(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error) {
	args := m.Called(ctx, ids, page)
	return args.Get(0).(domain.Page[domain.Item]), args.Error(1)
}

func startServer(t *testing.T, items itemReader) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServerWithListener(lis)
	srv.RegisterCatalog(NewCatalogServiceServer(items))
	go func() { _ = srv.Start() }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestCatalogService_GetItem(t *testing.T) {
	items := new(mockItems)
	items.On("Get", mock.Anything, int64(1)).Return(domain.Item{
		ID:         1,
		Name:       "Widget",
		Price:      decimal.RequireFromString("9.99"),
		Categories: []domain.Category{{ID: 2, Name: "Tools"}},
	}, nil)
	items.On("Get", mock.Anything, int64(2)).Return(domain.Item{}, domain.NotFound("item", int64(2)))
	client := NewCatalogClient(startServer(t, items))
	ctx := context.Background()

	got, err := client.GetItem(ctx, wrapperspb.Int64(1))
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.GetFields()["name"].GetStringValue())
	assert.Equal(t, "9.99", got.GetFields()["price"].GetStringValue())
	assert.Len(t, got.GetFields()["categories"].GetListValue().GetValues(), 1)

	_, err = client.GetItem(ctx, wrapperspb.Int64(2))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetItem(ctx, wrapperspb.Int64(0))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCatalogService_GetItemsByCategories(t *testing.T) {
	items := new(mockItems)
	page := domain.NewPageRequest(1, 5)
	items.On("GetByCategories", mock.Anything, []int64{3, 4}, page).
		Return(domain.NewPage([]domain.Item{{ID: 9, Name: "Rake"}}, page, 1), nil)
	client := NewCatalogClient(startServer(t, items))

	req, err := structpb.NewStruct(map[string]any{"ids": []any{3, 4}, "page": 1, "pageSize": 5})
	require.NoError(t, err)

	got, err := client.GetItemsByCategories(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, float64(1), got.GetFields()["totalItems"].GetNumberValue())
	assert.Len(t, got.GetFields()["items"].GetListValue().GetValues(), 1)

	bad, err := structpb.NewStruct(map[string]any{"ids": []any{1.5}})
	require.NoError(t, err)
	_, err = client.GetItemsByCategories(context.Background(), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_HealthReportsCatalog(t *testing.T) {
	conn := startServer(t, new(mockItems))

	res, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: catalogServiceName})

	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, res.GetStatus())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{domain.NotFound("item", 1), codes.NotFound},
		{domain.ErrInvalidInput, codes.InvalidArgument},
		{domain.AlreadyExists("item", "x"), codes.AlreadyExists},
		{domain.ErrInUse, codes.FailedPrecondition},
		{domain.Unavailable("entity store", assert.AnError), codes.Unavailable},
		{assert.AnError, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(mapError(tt.err)), tt.err.Error())
	}
}
