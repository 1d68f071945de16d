package main

import (
	"os"

	"github.com/spotfinder/backend/cmd/spotctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
