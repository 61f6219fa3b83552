package main

import (
	"os"

	"github.com/mjones3/event-governance-poc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
