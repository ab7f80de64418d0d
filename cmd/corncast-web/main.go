package main

import (
	"os"

	"github.com/Antony-Mwangi/CORN-CAST/cmd/corncast-web/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
