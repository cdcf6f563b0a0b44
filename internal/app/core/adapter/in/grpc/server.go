package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-branch-ledger/internal/app/core/statement"
	"github.com/JoeShih716/go-branch-ledger/internal/app/core/usecase"
	pb "github.com/JoeShih716/go-branch-ledger/proto"
)

// 交易失敗時回傳給客戶端的錯誤代碼
const (
	CodeInvalidAmount      = "invalid_amount"
	CodeInsufficientFunds  = "insufficient_funds"
	CodeCeilingExceeded    = "ceiling_exceeded"
	CodeDailyLimitExceeded = "daily_limit_exceeded"
)

type GrpcServer struct {
	pb.UnimplementedLedgerServiceServer
	ledger usecase.Ledger
}

func NewGrpcServer(ledger usecase.Ledger) *GrpcServer {
	return &GrpcServer{
		ledger: ledger,
	}
}

func (s *GrpcServer) CreateClient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := usecase.ClientInput{
		Name:      stringField(req, "name"),
		BirthDate: stringField(req, "birth_date"),
		CPF:       stringField(req, "cpf"),
		Address:   stringField(req, "address"),
	}
	client, err := s.ledger.CreateClient(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(clientFields(client))
}

func (s *GrpcServer) FindClient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	client, err := s.ledger.FindClient(ctx, stringField(req, "cpf"))
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(clientFields(client))
}

func (s *GrpcServer) OpenAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	kind, err := usecase.ParseAccountKind(stringField(req, "kind"))
	if err != nil {
		return nil, toStatus(err)
	}
	var ceiling decimal.NullDecimal
	if _, ok := req.GetFields()["ceiling"]; ok {
		d, err := decimalField(req, "ceiling")
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		ceiling = decimal.NewNullDecimal(d)
	}
	account, err := s.ledger.OpenAccount(ctx, stringField(req, "cpf"), kind, ceiling)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"account": accountFields(account)})
}

func (s *GrpcServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transaction(ctx, req, s.ledger.Deposit)
}

func (s *GrpcServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transaction(ctx, req, s.ledger.Withdraw)
}

type postFunc func(ctx context.Context, cpf string, number int64, amount decimal.Decimal) (usecase.AccountView, error)

// transaction 存提款共用流程
// 業務規則錯誤回傳 success=false (Soft Failure)，找不到客戶或帳戶則回傳 NotFound
func (s *GrpcServer) transaction(ctx context.Context, req *structpb.Struct, post postFunc) (*structpb.Struct, error) {
	// 1. 解析金額
	amount, err := decimalField(req, "amount")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	number, err := int64Field(req, "account")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	// 2. 執行交易
	account, err := post(ctx, stringField(req, "cpf"), number, amount)
	if err != nil {
		if code, ok := businessCode(err); ok {
			return newStruct(map[string]any{
				"success": false,
				"code":    code,
				"message": err.Error(),
			})
		}
		return nil, toStatus(err)
	}

	// 3. 回傳最新帳戶狀態
	return newStruct(map[string]any{
		"success": true,
		"account": accountFields(account),
	})
}

// Statement 回傳明細與 markdown 版本 (ledgerctl 直接渲染)
func (s *GrpcServer) Statement(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, err := int64Field(req, "account")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	st, err := s.ledger.Statement(ctx, stringField(req, "cpf"), number)
	if err != nil {
		return nil, toStatus(err)
	}
	entries := make([]any, 0, len(st.Entries))
	for _, e := range st.Entries {
		entries = append(entries, map[string]any{
			"id":        e.ID.String(),
			"kind":      e.Kind.String(),
			"amount":    e.Amount.String(),
			"timestamp": e.Timestamp.Format(time.RFC3339),
		})
	}
	return newStruct(map[string]any{
		"account":  accountFields(st.Account),
		"entries":  entries,
		"markdown": statement.Markdown(st),
	})
}

func (s *GrpcServer) ListAccounts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	accounts, err := s.ledger.ListAccounts(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, 0, len(accounts))
	for _, a := range accounts {
		list = append(list, accountFields(a))
	}
	return newStruct(map[string]any{"accounts": list})
}

// LoggingInterceptor 記錄每個 RPC 的方法、耗時與狀態碼
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("rpc",
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.Stringer("code", status.Code(err)))
		return resp, err
	}
}

// RecoveryInterceptor 將 handler 的 panic 轉為 codes.Internal，避免整個 session 隨行程結束
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("rpc panic",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.Stack("stack"))
				resp, err = nil, status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func businessCode(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return CodeInvalidAmount, true
	case errors.Is(err, domain.ErrInsufficientFunds):
		return CodeInsufficientFunds, true
	case errors.Is(err, domain.ErrCeilingExceeded):
		return CodeCeilingExceeded, true
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		return CodeDailyLimitExceeded, true
	}
	return "", false
}

// toStatus 將 domain 錯誤轉為 gRPC status
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrClientNotFound), errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrClientAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidClient),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, usecase.ErrInvalidAccountKind):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func clientFields(c usecase.ClientView) map[string]any {
	accounts := make([]any, 0, len(c.Accounts))
	for _, n := range c.Accounts {
		accounts = append(accounts, n)
	}
	return map[string]any{
		"name":       c.Name,
		"birth_date": c.BirthDate,
		"cpf":        c.CPF,
		"address":    c.Address,
		"accounts":   accounts,
	}
}

func accountFields(a usecase.AccountView) map[string]any {
	m := map[string]any{
		"number":  a.Number,
		"branch":  a.Branch,
		"holder":  a.Holder,
		"cpf":     a.CPF,
		"kind":    string(a.Kind),
		"balance": a.Balance.String(),
	}
	if a.Ceiling.Valid {
		m["ceiling"] = a.Ceiling.Decimal.String()
	}
	return m
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// int64Field 帳號可以是字串或整數，缺少時為 0
// 非整數、超出 int64 範圍或無法解析時回傳錯誤
func int64Field(req *structpb.Struct, key string) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, k.StringValue, err)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		// 2^63 無法以 int64 表示，所以上界不含等號
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("invalid %s: %v is not an integer", key, f)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("invalid %s: expected string or number", key)
	}
}

// amountPlaces 金額最多兩位小數 (分)
const amountPlaces = 2

// decimalField 金額可以是字串 ("10.50") 或數字
// NaN、Inf 與超過兩位小數的金額一律拒絕
func decimalField(req *structpb.Struct, key string) (decimal.Decimal, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("missing field %q", key)
	}
	var d decimal.Decimal
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		var err error
		d, err = decimal.NewFromString(k.StringValue)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
		}
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Errorf("invalid %s: %v is not a finite number", key, f)
		}
		d = decimal.NewFromFloat(f)
	default:
		return decimal.Zero, fmt.Errorf("invalid %s: expected string or number", key)
	}
	if !d.Equal(d.Round(amountPlaces)) {
		return decimal.Zero, fmt.Errorf("invalid %s: %s has more than %d decimal places", key, d, amountPlaces)
	}
	return d, nil
}
