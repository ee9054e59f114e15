package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gamearr/logger"
	"gamearr/scheduler"
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background scheduler",
	Long: `Runs gamearr as a long-lived process: sweeps release sources for
monitored games, polls qBittorrent for finished downloads, imports
completed games and refreshes the discover lists. Stops on SIGINT or
SIGTERM.`,
	Run: func(_ *cobra.Command, _ []string) {
		runDaemon()
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon() {
	a := bootstrap(".")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("Scheduler starting")
	sched := scheduler.New(a.store, a.engine, a.qbit, a.igdb, a.processor, logger.Log)
	sched.Run(ctx)
	logger.Log.Info("Scheduler stopped")
}
