package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamearr/logger"
	"gamearr/ui"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked games and their acquisition state",
	Run: func(_ *cobra.Command, _ []string) {
		runList()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList() {
	a := bootstrap(".")

	games, err := a.store.ListGames()
	if err != nil {
		logger.Log.Fatalw("Failed to list games", zap.Error(err))
	}
	if len(games) == 0 {
		fmt.Println("No games tracked yet, use `gamearr add` to start")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tSTATUS\tRELEASE\tSOURCE")
	for _, game := range games {
		releaseName := game.ReleaseName
		if releaseName == "" {
			releaseName = "-"
		}
		source := game.ReleaseSource
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			ui.Title(game.Title), ui.Status(game.Status), releaseName, source)
	}
	w.Flush()
}
