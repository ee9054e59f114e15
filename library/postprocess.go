package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gamearr/db"
)

// assetExtensions are the release metadata files worth carrying from the
// download folder into the library.
var assetExtensions = map[string]struct{}{
	".nfo": {},
	".sfv": {},
	".jpg": {},
	".png": {},
}

// PostProcessor finishes downloaded games: it copies release asset files
// from the downloads directory into the library and flips the game to
// Imported once the extracted folder is in place.
type PostProcessor struct {
	store        *db.Store
	DownloadsDir string
	LibraryDir   string
	log          *zap.SugaredLogger
}

func NewPostProcessor(store *db.Store, downloadsDir, libraryDir string, log *zap.SugaredLogger) *PostProcessor {
	return &PostProcessor{
		store:        store,
		DownloadsDir: downloadsDir,
		LibraryDir:   libraryDir,
		log:          log,
	}
}

// Run processes every game sitting in Downloaded. A game whose extracted
// folder has not appeared in the library yet is left alone for the next
// sweep.
func (p *PostProcessor) Run() error {
	games, err := p.store.ListGamesByStatus(db.StatusDownloaded)
	if err != nil {
		return err
	}

	for i := range games {
		game := &games[i]
		if game.ReleaseName == "" {
			continue
		}
		if err := p.processOne(game); err != nil {
			p.log.Errorw("post-processing failed",
				zap.String("title", game.Title), zap.Error(err))
		}
	}
	return nil
}

func (p *PostProcessor) processOne(game *db.Game) error {
	folder := strings.TrimSpace(game.ReleaseName)
	source := filepath.Join(p.DownloadsDir, folder)
	dest := filepath.Join(p.LibraryDir, folder)

	if !isDir(source) || !isDir(dest) {
		return nil
	}

	copied, err := copyAssets(source, dest)
	if err != nil {
		return err
	}

	game.Status = db.StatusImported
	game.LocalPath = folder
	if err := p.store.SaveGame(game); err != nil {
		return err
	}
	p.log.Infow("post-processed and imported",
		zap.String("title", game.Title), zap.Int("assets", copied))
	return nil
}

// copyAssets copies asset files (non-recursively) from source to dest,
// skipping files that already exist at the destination.
func copyAssets(source, dest string) (int, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return 0, fmt.Errorf("read download folder: %w", err)
	}

	var copied int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := assetExtensions[ext]; !ok {
			continue
		}
		target := filepath.Join(dest, entry.Name())
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := copyFile(filepath.Join(source, entry.Name()), target); err != nil {
			return copied, fmt.Errorf("copy %s: %w", entry.Name(), err)
		}
		copied++
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
