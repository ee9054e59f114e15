package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command all subcommands attach to
var rootCmd = &cobra.Command{
	Use:   "gamearr",
	Short: "Automated game release monitoring and library management",
	Long: `gamearr watches release sources for cracked versions of the games
you monitor, hands the chosen release to qBittorrent and imports the
finished download into your library.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
