package main

import (
	"os"

	"github.com/kaede/loglens/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
