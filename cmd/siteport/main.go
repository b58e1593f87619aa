package main

import (
	"os"

	"siteport.dev/siteport-cli/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
