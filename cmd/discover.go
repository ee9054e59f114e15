package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamearr/igdb"
	"gamearr/logger"
	"gamearr/ui"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Show the anticipated, coming soon and top reviewed PC lists",
	Long: `Prints the cached IGDB discover lists. The daemon refreshes the cache
daily, --refresh forces a fetch right now.`,
	Run: func(cmd *cobra.Command, _ []string) {
		refresh, _ := cmd.Flags().GetBool("refresh")
		runDiscover(refresh)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().Bool("refresh", false, "Fetch fresh lists from IGDB before printing")
}

var discoverHeadings = []struct {
	name  string
	label string
}{
	{igdb.ListAnticipated, "Most anticipated"},
	{igdb.ListComingSoon, "Coming soon"},
	{igdb.ListTopReviewed, "Top reviewed"},
}

func runDiscover(refresh bool) {
	a := bootstrap(".")

	if refresh {
		lists, err := a.igdb.DiscoverLists(context.Background())
		if err != nil {
			logger.Log.Fatalw("Failed to fetch discover lists", zap.Error(err))
		}
		for name, games := range lists {
			content, err := json.Marshal(games)
			if err != nil {
				logger.Log.Fatalw("Failed to encode discover list", zap.String("list", name), zap.Error(err))
			}
			if err := a.store.PutDiscoverList(name, string(content)); err != nil {
				logger.Log.Fatalw("Failed to cache discover list", zap.String("list", name), zap.Error(err))
			}
		}
	}

	for _, heading := range discoverHeadings {
		content, err := a.store.GetDiscoverList(heading.name)
		if err != nil {
			logger.Log.Warnw("Failed to load discover list", zap.String("list", heading.name), zap.Error(err))
			continue
		}
		fmt.Printf("\n%s\n", ui.Title(heading.label))
		if content == "" {
			fmt.Println("  (not cached yet, run with --refresh)")
			continue
		}
		var games []igdb.Game
		if err := json.Unmarshal([]byte(content), &games); err != nil {
			logger.Log.Warnw("Corrupt discover cache entry", zap.String("list", heading.name), zap.Error(err))
			continue
		}
		for _, game := range games {
			line := game.Name
			if date := game.ReleaseDate(); date != nil {
				line = fmt.Sprintf("%s (%s)", line, date.Format("2006-01-02"))
			}
			fmt.Printf("  %s\n", line)
		}
	}
}
