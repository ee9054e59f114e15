package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamearr/db"
	"gamearr/logger"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Start monitoring a game for cracked releases",
	Long: `Looks the title up on IGDB, stores it as a monitored game and runs
an immediate release check.
Example: gamearr add "Hades II"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		igdbID, _ := cmd.Flags().GetInt64("id")
		interactive, _ := cmd.Flags().GetBool("interactive")
		noCheck, _ := cmd.Flags().GetBool("no-check")
		addGame(strings.Join(args, " "), igdbID, interactive, noCheck)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().Int64("id", 0, "Add by IGDB id instead of the best search match")
	addCmd.Flags().BoolP("interactive", "i", false, "Pick the match from the search results")
	addCmd.Flags().Bool("no-check", false, "Skip the immediate release check")
}

func addGame(title string, igdbID int64, interactive, noCheck bool) {
	a := bootstrap(".")
	ctx := context.Background()

	var match *db.Game
	var err error
	switch {
	case igdbID > 0:
		match, err = resolveByID(ctx, a, igdbID)
	case interactive:
		match, err = resolveInteractive(ctx, a, title)
	default:
		match, err = resolveByTitle(ctx, a, title)
	}
	if err != nil {
		logger.Log.Fatalw("Failed to resolve game on IGDB", zap.Error(err))
	}

	exists, err := a.store.GameExists(*match.IGDBID, "")
	if err != nil {
		logger.Log.Fatalw("Failed to query database", zap.Error(err))
	}
	if exists {
		fmt.Printf("%s is already being tracked\n", match.Title)
		return
	}

	match.Status = db.StatusMonitoring
	match.NeedsReleaseCheck = true
	if err := a.store.CreateGame(match); err != nil {
		logger.Log.Fatalw("Failed to save game", zap.Error(err))
	}
	fmt.Printf("Now monitoring %s (%s)\n", match.Title, releaseDateLabel(match))

	if noCheck {
		return
	}

	logger.Log.Infow("Running immediate release check", zap.String("title", match.Title))
	if _, err := a.store.ClaimForCheck(match.ID); err != nil {
		logger.Log.Warnw("Failed to claim game for check", zap.Error(err))
		return
	}
	if err := a.engine.Reconcile(ctx, match.ID); err != nil {
		logger.Log.Warnw("Release check failed", zap.Error(err))
		return
	}
	printOutcome(a, match.ID)
}

func resolveByID(ctx context.Context, a *app, id int64) (*db.Game, error) {
	hit, err := a.igdb.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return gameFromCatalog(hit), nil
}

func resolveByTitle(ctx context.Context, a *app, title string) (*db.Game, error) {
	hits, err := a.igdb.SearchGames(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("no IGDB results for %q", title)
	}
	// Search results come back relevance sorted, refetch the top hit
	// for the full field set.
	return resolveByID(ctx, a, hits[0].ID)
}

func resolveInteractive(ctx context.Context, a *app, title string) (*db.Game, error) {
	hits, err := a.igdb.SearchGames(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("no IGDB results for %q", title)
	}

	for i, hit := range hits {
		label := hit.Name
		if date := hit.ReleaseDate(); date != nil {
			label = fmt.Sprintf("%s (%d)", label, date.Year())
		}
		fmt.Printf("  %2d) %s\n", i+1, label)
	}
	fmt.Printf("Pick a match [1-%d]: ", len(hits))

	var choice int
	if _, err := fmt.Scanln(&choice); err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	if choice < 1 || choice > len(hits) {
		return nil, fmt.Errorf("selection %d out of range", choice)
	}
	return resolveByID(ctx, a, hits[choice-1].ID)
}

func printOutcome(a *app, gameID uint) {
	game, err := a.store.GameByID(gameID)
	if err != nil {
		return
	}
	if game.HasPrimaryRelease() {
		fmt.Printf("Found release: %s [%s via %s]\n",
			game.ReleaseName, game.ReleaseTier, game.ReleaseSource)
	} else {
		fmt.Println("No cracked release found yet, the daemon will keep checking")
	}
}

func releaseDateLabel(game *db.Game) string {
	if game.ReleaseDate == nil {
		return "unreleased"
	}
	return game.ReleaseDate.Format("2006-01-02")
}
