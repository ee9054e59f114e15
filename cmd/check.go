package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamearr/db"
	"gamearr/logger"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [slug]",
	Short: "Run a release check for one game or every monitored game",
	Long: `Queries all release sources for the given game and reconciles the
result into the database.
Example: gamearr check hades--2`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			logger.Log.Fatal("Error: pass a game slug or --all.")
		}
		slug := ""
		if len(args) > 0 {
			slug = args[0]
		}
		runCheck(slug, all)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("all", false, "Check every game that is not yet imported")
}

func runCheck(slug string, all bool) {
	a := bootstrap(".")
	ctx := context.Background()

	var games []db.Game
	if all {
		var err error
		games, err = a.store.ListGames()
		if err != nil {
			logger.Log.Fatalw("Failed to list games", zap.Error(err))
		}
	} else {
		game, err := a.store.GameBySlug(slug)
		if err != nil {
			logger.Log.Fatalw("Game not found", zap.String("slug", slug), zap.Error(err))
		}
		games = []db.Game{*game}
	}

	for i := range games {
		game := &games[i]
		if all && db.Owned(game.Status) {
			continue
		}
		logger.Log.Infow("Checking", zap.String("title", game.Title))
		if err := a.store.MarkReleaseCheck(game.ID, true); err != nil {
			logger.Log.Warnw("Failed to queue game", zap.String("title", game.Title), zap.Error(err))
			continue
		}
		if _, err := a.store.ClaimForCheck(game.ID); err != nil {
			logger.Log.Warnw("Failed to claim game", zap.String("title", game.Title), zap.Error(err))
			continue
		}
		if err := a.engine.Reconcile(ctx, game.ID); err != nil {
			logger.Log.Warnw("Release check failed", zap.String("title", game.Title), zap.Error(err))
			continue
		}
		printOutcome(a, game.ID)
	}
	fmt.Println("Done")
}
