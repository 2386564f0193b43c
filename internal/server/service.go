package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ragnarok.engine.v1.Engine"

// EngineService is the gRPC surface of the engine. Requests and responses
// are google.protobuf.Struct documents; the field names match the json
// tags of the game view types.
type EngineService interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlayCard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Attack(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndTurn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveChoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(EngineService, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call structCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EngineService), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EngineService), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var engineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineService)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateGame", EngineService.CreateGame),
		unaryMethod("PlayCard", EngineService.PlayCard),
		unaryMethod("Attack", EngineService.Attack),
		unaryMethod("EndTurn", EngineService.EndTurn),
		unaryMethod("ResolveChoice", EngineService.ResolveChoice),
		unaryMethod("GetState", EngineService.GetState),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ragnarok/engine/v1/engine.proto",
}

// RegisterEngineService registers srv on s.
func RegisterEngineService(s grpc.ServiceRegistrar, srv EngineService) {
	s.RegisterService(&engineServiceDesc, srv)
}

// EngineClient calls a remote EngineService.
type EngineClient struct {
	cc grpc.ClientConnInterface
}

// NewEngineClient creates a client over cc.
func NewEngineClient(cc grpc.ClientConnInterface) *EngineClient {
	return &EngineClient{cc: cc}
}

func (c *EngineClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateGame", in, opts...)
}

func (c *EngineClient) PlayCard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "PlayCard", in, opts...)
}

func (c *EngineClient) Attack(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Attack", in, opts...)
}

func (c *EngineClient) EndTurn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "EndTurn", in, opts...)
}

func (c *EngineClient) ResolveChoice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ResolveChoice", in, opts...)
}

func (c *EngineClient) GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetState", in, opts...)
}
