package main

import (
	"os"

	"github.com/ridopark/closebt/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
