package main

import (
	"fmt"
	"os"

	"github.com/tokenbay/tokenbay/cmd/tokenbay/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
