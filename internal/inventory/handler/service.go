package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// RestockServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct documents whose keys match the JSON
// field names of the HTTP API.
const RestockServiceName = "omnipos.inventory.v1.RestockService"

const (
	MethodCreateProduct      = "CreateProduct"
	MethodGetInventoryStatus = "GetInventoryStatus"
	MethodPurchaseProduct    = "PurchaseProduct"
	MethodListProducts       = "ListProducts"
)

type RestockServiceServer interface {
	CreateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetInventoryStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PurchaseProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(RestockServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := FullMethod(name)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RestockServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RestockServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var RestockServiceDesc = grpc.ServiceDesc{
	ServiceName: RestockServiceName,
	HandlerType: (*RestockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateProduct, Handler: unaryHandler(MethodCreateProduct, RestockServiceServer.CreateProduct)},
		{MethodName: MethodGetInventoryStatus, Handler: unaryHandler(MethodGetInventoryStatus, RestockServiceServer.GetInventoryStatus)},
		{MethodName: MethodPurchaseProduct, Handler: unaryHandler(MethodPurchaseProduct, RestockServiceServer.PurchaseProduct)},
		{MethodName: MethodListProducts, Handler: unaryHandler(MethodListProducts, RestockServiceServer.ListProducts)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/restock.proto",
}

func RegisterRestockServiceServer(s grpc.ServiceRegistrar, srv RestockServiceServer) {
	s.RegisterService(&RestockServiceDesc, srv)
}

func FullMethod(name string) string {
	return "/" + RestockServiceName + "/" + name
}

type RestockServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRestockServiceClient(cc grpc.ClientConnInterface) *RestockServiceClient {
	return &RestockServiceClient{cc: cc}
}

func (c *RestockServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
