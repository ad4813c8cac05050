// Command munch splits text into tokens by maximal munch over a built-in
// rule set.
//
// Usage:
//
//	munch [file]                 tokenize a file, or stdin when omitted
//	munch rules                  list the built-in rules
//	munch history <run-id>       print a journaled run from the store
//
// Configuration is read from a YAML file given with --config; flags override
// file values. MUNCH_MYSQL_DSN supplies the MySQL DSN unless --dsn is given.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errorStyle.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}
