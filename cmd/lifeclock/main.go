package main

import (
	"os"

	"github.com/lazypower/lifeclock/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
