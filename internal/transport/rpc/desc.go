// Package rpc: gRPC-сервис рабочего процесса. Сообщения: google.protobuf.Struct
// той же формы, что и JSON в REST, ответ всегда конверт {success, ...}.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "wellness.workflow.v1.WorkflowService"

const (
	MethodCalculatePrice   = "CalculatePrice"
	MethodCreateBooking    = "CreateBooking"
	MethodConfirmBooking   = "ConfirmBooking"
	MethodGenerateInvoice  = "GenerateInvoice"
	MethodRecordPayment    = "RecordPayment"
	MethodCancelBooking    = "CancelBooking"
	MethodCompleteBooking  = "CompleteBooking"
	MethodGetAllBookings   = "GetAllBookings"
	MethodGetUserBookings  = "GetUserBookings"
	MethodGetBookedDates   = "GetBookedDates"
	MethodGetClientHistory = "GetClientHistory"
)

// WorkflowServer: серверная сторона WorkflowService.
type WorkflowServer interface {
	CalculatePrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordPayment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CompleteBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAllBookings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUserBookings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBookedDates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetClientHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(WorkflowServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn call) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(WorkflowServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(WorkflowServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

var WorkflowServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WorkflowServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodCalculatePrice, WorkflowServer.CalculatePrice),
		unary(MethodCreateBooking, WorkflowServer.CreateBooking),
		unary(MethodConfirmBooking, WorkflowServer.ConfirmBooking),
		unary(MethodGenerateInvoice, WorkflowServer.GenerateInvoice),
		unary(MethodRecordPayment, WorkflowServer.RecordPayment),
		unary(MethodCancelBooking, WorkflowServer.CancelBooking),
		unary(MethodCompleteBooking, WorkflowServer.CompleteBooking),
		unary(MethodGetAllBookings, WorkflowServer.GetAllBookings),
		unary(MethodGetUserBookings, WorkflowServer.GetUserBookings),
		unary(MethodGetBookedDates, WorkflowServer.GetBookedDates),
		unary(MethodGetClientHistory, WorkflowServer.GetClientHistory),
	},
	Streams:     []grpc.StreamDesc{},
}

func RegisterWorkflowServer(s grpc.ServiceRegistrar, srv WorkflowServer) {
	s.RegisterService(&WorkflowServiceDesc, srv)
}

// WorkflowClient: клиент WorkflowService.
type WorkflowClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkflowClient(cc grpc.ClientConnInterface) *WorkflowClient {
	return &WorkflowClient{cc: cc}
}

// Call вызывает метод по короткому имени, например MethodCreateBooking.
func (c *WorkflowClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
