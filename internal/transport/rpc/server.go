package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/service"
	"github.com/Leganyst/wellness-booking/internal/transport"
)

// Server реализует WorkflowServer поверх сервисов рабочего процесса.
// Ошибки операций возвращаются конвертом success:false, статус gRPC
// не-OK только для нечитаемого запроса.
type Server struct {
	workflow transport.Workflow
	queries  transport.Queries
	catalog  *service.Catalog
	log      logrus.FieldLogger
}

func NewServer(workflow transport.Workflow, queries transport.Queries, catalog *service.Catalog, log logrus.FieldLogger) *Server {
	return &Server{workflow: workflow, queries: queries, catalog: catalog, log: log}
}

var _ WorkflowServer = (*Server)(nil)

// decode перекладывает Struct в Go-структуру через JSON.
func decode(in *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func (s *Server) reply(method string, payload any, err error) (*structpb.Struct, error) {
	var body map[string]any
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"code":   transport.ErrorCode(err).String(),
		}).Info("rpc operation failed")
		body = transport.Fail(err)
	} else {
		body, err = transport.OK(payload)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode response: %v", err)
		}
	}

	out, err := structpb.NewStruct(body)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

type bookingRef struct {
	BookingID string `json:"bookingId"`
	Reason    string `json:"reason"`
}

type emailRef struct {
	Email string `json:"email"`
}

type paymentRequest struct {
	InvoiceID string              `json:"invoiceId"`
	Amount    decimal.Decimal     `json:"amount"`
	Method    model.PaymentMethod `json:"method"`
	Date      *time.Time          `json:"date"`
	Reference string              `json:"reference"`
	Notes     string              `json:"notes"`
}

type listRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (s *Server) CalculatePrice(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req service.PriceRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	res, err := service.CalculatePrice(s.catalog, req)
	return s.reply(MethodCalculatePrice, res, err)
}

func (s *Server) CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req service.CreateBookingRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	res, err := s.workflow.CreateFullBooking(ctx, req)
	return s.reply(MethodCreateBooking, res, err)
}

func (s *Server) ConfirmBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req bookingRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	res, err := s.workflow.ConfirmBooking(ctx, req.BookingID)
	return s.reply(MethodConfirmBooking, res, err)
}

func (s *Server) GenerateInvoice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req bookingRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	inv, err := s.workflow.GenerateInvoiceDocument(ctx, req.BookingID)
	return s.reply(MethodGenerateInvoice, map[string]any{"invoice": inv}, err)
}

func (s *Server) RecordPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req paymentRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	res, err := s.workflow.RecordPayment(ctx, req.InvoiceID, service.PaymentData{
		Amount:    req.Amount,
		Method:    req.Method,
		Date:      req.Date,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	return s.reply(MethodRecordPayment, res, err)
}

func (s *Server) CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req bookingRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	b, err := s.workflow.CancelBooking(ctx, req.BookingID, req.Reason)
	return s.reply(MethodCancelBooking, map[string]any{"booking": b}, err)
}

func (s *Server) CompleteBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req bookingRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	b, err := s.workflow.CompleteBooking(ctx, req.BookingID)
	return s.reply(MethodCompleteBooking, map[string]any{"booking": b}, err)
}

func (s *Server) GetAllBookings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Page == 0 && req.PageSize == 0 {
		bookings, err := s.queries.GetAllBookings(ctx)
		return s.reply(MethodGetAllBookings, map[string]any{"bookings": bookings}, err)
	}

	p, err := s.queries.ListBookings(ctx, req.Page, req.PageSize)
	return s.reply(MethodGetAllBookings, map[string]any{
		"bookings": p.Items,
		"page":     p.Page,
		"pageSize": p.PageSize,
		"hasNext":  p.HasNext,
		"hasPrev":  p.HasPrev,
		"total":    p.Total,
	}, err)
}

func (s *Server) GetUserBookings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req emailRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	bookings, err := s.queries.GetUserBookings(ctx, req.Email)
	return s.reply(MethodGetUserBookings, map[string]any{"bookings": bookings}, err)
}

func (s *Server) GetBookedDates(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	slots, err := s.queries.GetBookedDates(ctx)
	return s.reply(MethodGetBookedDates, map[string]any{"bookedDates": slots}, err)
}

func (s *Server) GetClientHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req emailRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	entries, err := s.queries.GetClientHistory(ctx, req.Email)
	return s.reply(MethodGetClientHistory, map[string]any{"history": entries}, err)
}

// RecoveryInterceptor превращает панику обработчика в конверт success:false.
func RecoveryInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic":  r,
					"method": info.FullMethod,
				}).Error("rpc handler panic")
				resp, err = structpb.NewStruct(map[string]any{
					"success": false,
					"error":   "internal error",
				})
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor пишет строку лога на каждый вызов.
func LoggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Warn("rpc failed")
		} else {
			entry.Info("rpc processed")
		}
		return resp, err
	}
}

// NewGRPCServer собирает сервер с перехватчиками и зарегистрированным сервисом.
func NewGRPCServer(srv WorkflowServer, log logrus.FieldLogger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		LoggingInterceptor(log),
		RecoveryInterceptor(log),
	))
	s := grpc.NewServer(opts...)
	RegisterWorkflowServer(s, srv)
	return s
}
