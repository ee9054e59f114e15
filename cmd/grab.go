package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamearr/logger"
)

// grabCmd represents the grab command
var grabCmd = &cobra.Command{
	Use:   "grab [slug] [magnet]",
	Short: "Hand a magnet link for a cracked game to qBittorrent",
	Long: `Submits the magnet link to qBittorrent under the configured category
and tracks the resulting torrent for the game. The daemon picks the
download up from there and imports it once finished.`,
	Args: cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		grabRelease(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(grabCmd)
}

func grabRelease(slug, magnet string) {
	a := bootstrap(".")
	ctx := context.Background()

	game, err := a.store.GameBySlug(slug)
	if err != nil {
		logger.Log.Fatalw("Game not found", zap.String("slug", slug), zap.Error(err))
	}
	if !game.HasPrimaryRelease() {
		logger.Log.Fatalw("Game has no cracked release to grab yet", zap.String("title", game.Title))
	}

	err = a.engine.SubmitDownload(ctx, game.ID, func(ctx context.Context) (string, error) {
		return a.qbit.Submit(ctx, magnet)
	})
	if err != nil {
		logger.Log.Fatalw("Failed to hand release to qBittorrent", zap.Error(err))
	}
	fmt.Printf("Snatched %s, watch progress with `gamearr activity`\n", game.ReleaseName)
}
