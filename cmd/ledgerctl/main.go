package main

import (
	"context"
	"flag"
	"os"
	"path"
	"time"

	"github.com/google/subcommands"
)

var (
	addr    = flag.String("addr", "localhost:50051", "ledger gRPC server address")
	timeout = flag.Duration("timeout", 10*time.Second, "per-request timeout")
	verbose = flag.Bool("v", false, "log every RPC")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register 註冊所有子命令
func register(c *subcommands.Commander) {
	c.Register(&clientCmd{}, "clients")
	c.Register(&whoisCmd{}, "clients")
	c.Register(&openCmd{}, "clients")

	c.Register(&transactionCmd{name: "deposit"}, "transactions")
	c.Register(&transactionCmd{name: "withdraw"}, "transactions")

	c.Register(&statementCmd{}, "reports")
	c.Register(&accountsCmd{}, "reports")

	c.Register(&benchCmd{}, "tools")
}
