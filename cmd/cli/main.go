package main

import (
	"os"

	"github.com/taqnia-dev/adminctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
