package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamearr/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Scan the library directory and import untracked game folders",
	Long: `Walks the library directory, matches folders that are not yet in the
database against IGDB and records each match as an owned game.
With --dry-run the matches are printed without importing anything.`,
	Run: func(cmd *cobra.Command, _ []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		runImport(dryRun)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "List untracked folders and matches without importing")
}

func runImport(dryRun bool) {
	a := bootstrap(".")

	results, err := a.scanner.Scan(context.Background())
	if err != nil {
		logger.Log.Fatalw("Library scan failed", zap.Error(err))
	}
	if len(results) == 0 {
		fmt.Println("Library is up to date, nothing to import")
		return
	}

	imported := 0
	for _, res := range results {
		if len(res.Matches) == 0 {
			fmt.Printf("  ? %s (guessed %q, no IGDB match)\n", res.Folder, res.GuessedTitle)
			continue
		}
		best := res.Matches[0]
		if dryRun {
			fmt.Printf("  + %s -> %s\n", res.Folder, best.Name)
			continue
		}
		if err := a.scanner.Import(res.Folder, best); err != nil {
			logger.Log.Warnw("Import failed", zap.String("folder", res.Folder), zap.Error(err))
			continue
		}
		fmt.Printf("  + imported %s as %s\n", res.Folder, best.Name)
		imported++
	}

	if !dryRun {
		fmt.Printf("Imported %d of %d untracked folders\n", imported, len(results))
	}
}
