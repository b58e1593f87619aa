package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "siteport",
	Short: "Site restores from portable archives",
	Long: `Siteport restores a site from a portable archive onto a local or remote
environment. An archive bundles the application code, the public files and
a database dump; each component can be restored on its own or together.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the run logger. Verbose runs get human-readable
// development output, everything else logs structured JSON.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
