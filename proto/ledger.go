// Package proto 定義 ledger.v1.LedgerService 的 gRPC 介面。
// 訊息一律使用 google.protobuf.Struct，不需要 protoc 產生程式碼。
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務全名
const ServiceName = "ledger.v1.LedgerService"

// 方法名稱
const (
	MethodCreateClient = "CreateClient"
	MethodFindClient   = "FindClient"
	MethodOpenAccount  = "OpenAccount"
	MethodDeposit      = "Deposit"
	MethodWithdraw     = "Withdraw"
	MethodStatement    = "Statement"
	MethodListAccounts = "ListAccounts"
)

// FullMethod 回傳 "/ledger.v1.LedgerService/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// LedgerServiceServer 伺服器端需要實作的方法
type LedgerServiceServer interface {
	CreateClient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindClient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Statement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedLedgerServiceServer 嵌入後未實作的方法回傳 Unimplemented
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) CreateClient(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateClient not implemented")
}
func (UnimplementedLedgerServiceServer) FindClient(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method FindClient not implemented")
}
func (UnimplementedLedgerServiceServer) OpenAccount(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenAccount not implemented")
}
func (UnimplementedLedgerServiceServer) Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Deposit not implemented")
}
func (UnimplementedLedgerServiceServer) Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Withdraw not implemented")
}
func (UnimplementedLedgerServiceServer) Statement(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Statement not implemented")
}
func (UnimplementedLedgerServiceServer) ListAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAccounts not implemented")
}

type unaryCall func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler 將方法轉成 grpc.MethodHandler，並串上 interceptor
func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerServiceDesc 服務描述
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateClient, Handler: unaryHandler(MethodCreateClient, LedgerServiceServer.CreateClient)},
		{MethodName: MethodFindClient, Handler: unaryHandler(MethodFindClient, LedgerServiceServer.FindClient)},
		{MethodName: MethodOpenAccount, Handler: unaryHandler(MethodOpenAccount, LedgerServiceServer.OpenAccount)},
		{MethodName: MethodDeposit, Handler: unaryHandler(MethodDeposit, LedgerServiceServer.Deposit)},
		{MethodName: MethodWithdraw, Handler: unaryHandler(MethodWithdraw, LedgerServiceServer.Withdraw)},
		{MethodName: MethodStatement, Handler: unaryHandler(MethodStatement, LedgerServiceServer.Statement)},
		{MethodName: MethodListAccounts, Handler: unaryHandler(MethodListAccounts, LedgerServiceServer.ListAccounts)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer 註冊服務
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// LedgerServiceClient 客戶端
type LedgerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerServiceClient(cc grpc.ClientConnInterface) *LedgerServiceClient {
	return &LedgerServiceClient{cc: cc}
}

// Call 呼叫任一方法，req 為 nil 時送出空的 Struct
func (c *LedgerServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
