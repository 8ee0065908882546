package main

import (
	"os"

	"github.com/dev-mohitbeniwal/themis/cmd/themisctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
