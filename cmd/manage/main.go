package main

import (
	"os"

	"github.com/yourusername/mindquest/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
