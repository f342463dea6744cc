// Package main is the entrypoint for the ledger gateway.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/morezero/ledger-gateway/internal/server"
	"github.com/morezero/ledger-gateway/pkg/handlers"
	"github.com/morezero/ledger-gateway/pkg/rpc"
)

const usage = `Usage: ledger-gateway [command]
       ledger-gateway serve            Start the gateway (NATS + HTTP transports).
       ledger-gateway role <command>   Print the minimum role required for a command.

Commands:
  serve           (default) Start the ledger gateway.
  role <command>  Resolve the command against the built-in table and print
                  its minimum role ("forbidden" for unknown commands).

Environment: NATS_URL, GATEWAY_COMMAND_SUBJECT, GATEWAY_ADMIN_TOKEN,
GATEWAY_STANDALONE, AUDIT_DATABASE_URL, HTTP_PORT, LOG_LEVEL. See README.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "", "serve":
		if err := server.Run(); err != nil {
			log.Fatalf("ledger-gateway serve: %v", err)
		}
	case "role":
		if len(args) < 2 {
			log.Fatalf("ledger-gateway role: require a command name")
		}
		table := handlers.NewTable(handlers.Options{})
		fmt.Println(rpc.RoleRequired(table, args[1]))
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}
