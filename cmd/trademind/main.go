// Command trademind is the trading journal CLI and HTTP server.
package main

import (
	"os"

	"trademind/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
