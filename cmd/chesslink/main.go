package main

import (
	"os"

	"chesslink/cmd/chesslink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
