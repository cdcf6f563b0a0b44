package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	grpcpool "github.com/JoeShih716/go-branch-ledger/pkg/grpc"
	pb "github.com/JoeShih716/go-branch-ledger/proto"
)

// errSoftFailure 伺服器回傳 success=false
var errSoftFailure = errors.New("transaction rejected")

// session 一次命令執行所需的連線
type session struct {
	pool   *grpcpool.Pool
	client *pb.LedgerServiceClient
}

func newSession() (*session, error) {
	var opts []grpcpool.PoolOption
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpcpool.WithLogger(l))
	}
	pool := grpcpool.NewPool(opts...)
	conn, err := pool.GetConnection(*addr)
	if err != nil {
		return nil, err
	}
	return &session{pool: pool, client: pb.NewLedgerServiceClient(conn)}, nil
}

func (s *session) Close() { _ = s.pool.Close() }

// call 送出請求，soft failure 會轉成 errSoftFailure
func (s *session) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	out, err := s.client.Call(ctx, method, in)
	if err != nil {
		return nil, err
	}
	if err := softFailure(out); err != nil {
		return out, err
	}
	return out, nil
}

func softFailure(out *structpb.Struct) error {
	success, ok := out.GetFields()["success"]
	if !ok || success.GetBoolValue() {
		return nil
	}
	f := out.GetFields()
	return fmt.Errorf("%w: %s (%s)", errSoftFailure, f["message"].GetStringValue(), f["code"].GetStringValue())
}

// printErr 以使用者可讀的方式輸出錯誤
func printErr(err error) {
	if st, ok := status.FromError(err); ok && !errors.Is(err, errSoftFailure) {
		fmt.Fprintf(os.Stderr, "Error: %s: %s\n", st.Code(), st.Message())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func printJSON(v *structpb.Struct) {
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Println(string(b))
}

// renderMarkdown 以 glamour 渲染 markdown，非終端機時使用 notty 樣式
func renderMarkdown(md string, tty bool) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if tty {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
