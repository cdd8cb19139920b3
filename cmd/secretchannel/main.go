package main

import (
	"os"

	"secretchannel/cmd/secretchannel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
