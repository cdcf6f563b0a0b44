package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/JoeShih716/go-branch-ledger/proto"
)

// execute 開啟連線後執行 fn，統一處理錯誤與結束碼
func execute(ctx context.Context, fn func(*session) error) subcommands.ExitStatus {
	s, err := newSession()
	if err != nil {
		printErr(err)
		return subcommands.ExitFailure
	}
	defer s.Close()
	if err := fn(s); err != nil {
		printErr(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type clientCmd struct {
	name, birthDate, cpf, address string
}

func (*clientCmd) Name() string     { return "client" }
func (*clientCmd) Synopsis() string { return "register a new client" }
func (*clientCmd) Usage() string {
	return `ledgerctl client -cpf <cpf> -name <name> [-birth dd/mm/yyyy] [-address <address>]

  Registers a client. The CPF must not be in use.
`
}

func (c *clientCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cpf, "cpf", "", "client CPF (required)")
	f.StringVar(&c.name, "name", "", "client name (required)")
	f.StringVar(&c.birthDate, "birth", "", "birth date, dd/mm/yyyy")
	f.StringVar(&c.address, "address", "", "client address")
}

func (c *clientCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cpf == "" || c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -cpf and -name are required")
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(s *session) error {
		out, err := s.call(ctx, pb.MethodCreateClient, map[string]any{
			"name":       c.name,
			"birth_date": c.birthDate,
			"cpf":        c.cpf,
			"address":    c.address,
		})
		if err != nil {
			return err
		}
		printJSON(out)
		return nil
	})
}

type whoisCmd struct {
	cpf string
}

func (*whoisCmd) Name() string     { return "whois" }
func (*whoisCmd) Synopsis() string { return "look up a client by CPF" }
func (*whoisCmd) Usage() string {
	return `ledgerctl whois -cpf <cpf>

  Shows the client's data and account numbers.
`
}

func (c *whoisCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cpf, "cpf", "", "client CPF (required)")
}

func (c *whoisCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cpf == "" {
		fmt.Fprintln(os.Stderr, "Error: -cpf is required")
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(s *session) error {
		out, err := s.call(ctx, pb.MethodFindClient, map[string]any{"cpf": c.cpf})
		if err != nil {
			return err
		}
		printJSON(out)
		return nil
	})
}

type openCmd struct {
	cpf, kind, ceiling string
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open an account for a client" }
func (*openCmd) Usage() string {
	return `ledgerctl open -cpf <cpf> [-kind checking|basic] [-ceiling <amount>]

  Opens an account. Checking accounts use the server's default ceiling
  unless -ceiling is given.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cpf, "cpf", "", "client CPF (required)")
	f.StringVar(&c.kind, "kind", "checking", "account kind: checking or basic")
	f.StringVar(&c.ceiling, "ceiling", "", "withdrawal ceiling for checking accounts")
}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cpf == "" {
		fmt.Fprintln(os.Stderr, "Error: -cpf is required")
		return subcommands.ExitUsageError
	}
	req := map[string]any{"cpf": c.cpf, "kind": c.kind}
	if c.ceiling != "" {
		req["ceiling"] = c.ceiling
	}
	return execute(ctx, func(s *session) error {
		out, err := s.call(ctx, pb.MethodOpenAccount, req)
		if err != nil {
			return err
		}
		printJSON(out)
		return nil
	})
}

// transactionCmd 同時負責 deposit 與 withdraw
type transactionCmd struct {
	name    string
	cpf     string
	account int64
	amount  string
}

func (c *transactionCmd) Name() string     { return c.name }
func (c *transactionCmd) Synopsis() string { return c.name + " an amount" }
func (c *transactionCmd) Usage() string {
	return fmt.Sprintf(`ledgerctl %s -cpf <cpf> -amount <amount> [-account <number>]

  Without -account the client's first account is used.
`, c.name)
}

func (c *transactionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cpf, "cpf", "", "client CPF (required)")
	f.Int64Var(&c.account, "account", 0, "account number (0 = first account)")
	f.StringVar(&c.amount, "amount", "", "amount, e.g. 10.50 (required)")
}

func (c *transactionCmd) method() string {
	if c.name == "withdraw" {
		return pb.MethodWithdraw
	}
	return pb.MethodDeposit
}

func (c *transactionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cpf == "" || c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -cpf and -amount are required")
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(s *session) error {
		out, err := s.call(ctx, c.method(), map[string]any{
			"cpf":     c.cpf,
			"account": c.account,
			"amount":  c.amount,
		})
		if err != nil {
			return err
		}
		printJSON(out)
		return nil
	})
}

type statementCmd struct {
	cpf     string
	account int64
	raw     bool
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "display an account statement" }
func (*statementCmd) Usage() string {
	return `ledgerctl statement -cpf <cpf> [-account <number>] [-raw]

  Displays the account's transactions and balance.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cpf, "cpf", "", "client CPF (required)")
	f.Int64Var(&c.account, "account", 0, "account number (0 = first account)")
	f.BoolVar(&c.raw, "raw", false, "print markdown without rendering")
}

func (c *statementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cpf == "" {
		fmt.Fprintln(os.Stderr, "Error: -cpf is required")
		return subcommands.ExitUsageError
	}
	return execute(ctx, func(s *session) error {
		out, err := s.call(ctx, pb.MethodStatement, map[string]any{"cpf": c.cpf, "account": c.account})
		if err != nil {
			return err
		}
		md := out.GetFields()["markdown"].GetStringValue()
		if c.raw {
			fmt.Print(md)
			return nil
		}
		rendered, err := renderMarkdown(md, isTerminal(os.Stdout))
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	})
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list every account in creation order" }
func (*accountsCmd) Usage() string {
	return `ledgerctl accounts

  Lists branch, number and holder of every account.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, func(s *session) error {
		out, err := s.call(ctx, pb.MethodListAccounts, nil)
		if err != nil {
			return err
		}
		md, err := renderMarkdown(accountsMarkdown(out.GetFields()["accounts"].GetListValue().GetValues()), isTerminal(os.Stdout))
		if err != nil {
			return err
		}
		fmt.Print(md)
		return nil
	})
}

func accountsMarkdown(accounts []*structpb.Value) string {
	if len(accounts) == 0 {
		return "No accounts.\n"
	}
	var b strings.Builder
	b.WriteString("| Branch | Number | Holder | Kind |\n")
	b.WriteString("|--------|-------:|--------|------|\n")
	for _, v := range accounts {
		f := v.GetStructValue().GetFields()
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
			f["branch"].GetStringValue(),
			int64(f["number"].GetNumberValue()),
			f["holder"].GetStringValue(),
			f["kind"].GetStringValue())
	}
	return b.String()
}
