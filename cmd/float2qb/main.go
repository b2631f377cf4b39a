package main

import (
	"os"

	"github.com/float2qb-dev/float2qb/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
