package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "assetflow.v1.AssetService"

// AssetServiceServer is the server API for the asset service.
// Every request and response body is a google.protobuf.Struct.
type AssetServiceServer interface {
	ListHoldings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddHolding(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateHolding(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteHolding(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Project(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BeginStockTake(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetAdjustedAmount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStockTake(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveStockTake(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelStockTake(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(AssetServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AssetServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(AssetServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AssetServiceDesc is the grpc.ServiceDesc for the asset service
var AssetServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AssetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("ListHoldings", AssetServiceServer.ListHoldings),
		methodDesc("AddHolding", AssetServiceServer.AddHolding),
		methodDesc("UpdateHolding", AssetServiceServer.UpdateHolding),
		methodDesc("DeleteHolding", AssetServiceServer.DeleteHolding),
		methodDesc("GetSummary", AssetServiceServer.GetSummary),
		methodDesc("Project", AssetServiceServer.Project),
		methodDesc("Simulate", AssetServiceServer.Simulate),
		methodDesc("ListHistory", AssetServiceServer.ListHistory),
		methodDesc("GetHistory", AssetServiceServer.GetHistory),
		methodDesc("DeleteHistory", AssetServiceServer.DeleteHistory),
		methodDesc("BeginStockTake", AssetServiceServer.BeginStockTake),
		methodDesc("SetAdjustedAmount", AssetServiceServer.SetAdjustedAmount),
		methodDesc("GetStockTake", AssetServiceServer.GetStockTake),
		methodDesc("SaveStockTake", AssetServiceServer.SaveStockTake),
		methodDesc("CancelStockTake", AssetServiceServer.CancelStockTake),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "assetflow/v1/asset_service.proto",
}

// RegisterAssetServiceServer registers srv on s
func RegisterAssetServiceServer(s grpc.ServiceRegistrar, srv AssetServiceServer) {
	s.RegisterService(&AssetServiceDesc, srv)
}

// AssetServiceClient calls the asset service over a client connection
type AssetServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAssetServiceClient creates a client for cc
func NewAssetServiceClient(cc grpc.ClientConnInterface) *AssetServiceClient {
	return &AssetServiceClient{cc: cc}
}

// Call invokes method (e.g. "ListHoldings") with req
func (c *AssetServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
