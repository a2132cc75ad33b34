// Command ledgerguard is the screening and audit engine for agent-driven transfers.
package main

import "github.com/ledgerguard/ledgerguard/internal/cli"

func main() {
	cli.Execute()
}
