package main

import (
	"os"

	"github.com/spigell/jobnado/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
