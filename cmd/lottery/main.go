// Command lottery hosts and drives the ticket lottery program on a local
// ledger.
package main

import (
	"fmt"
	"os"

	"github.com/solongwallet/lottery/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
