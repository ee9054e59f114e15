package library

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/moistari/rls"
	"go.uber.org/zap"

	"gamearr/db"
	"gamearr/igdb"
	"gamearr/release"
)

// MetadataSearcher is the metadata-lookup capability the scanner needs.
type MetadataSearcher interface {
	SearchGames(ctx context.Context, term string) ([]igdb.Game, error)
}

// Scanner finds untracked game folders in the library directory and
// matches them against the metadata catalog.
type Scanner struct {
	store      *db.Store
	meta       MetadataSearcher
	LibraryDir string
	log        *zap.SugaredLogger
}

func NewScanner(store *db.Store, meta MetadataSearcher, libraryDir string, log *zap.SugaredLogger) *Scanner {
	return &Scanner{store: store, meta: meta, LibraryDir: libraryDir, log: log}
}

// ScanResult is one untracked folder with its catalog matches, best first.
type ScanResult struct {
	Folder       string
	GuessedTitle string
	Matches      []igdb.Game
}

var trailingGroup = regexp.MustCompile(`-[A-Za-z0-9]+$`)

// GuessTitle extracts a searchable game title from a release-style folder
// name.
func GuessTitle(folder string) string {
	parsed := rls.ParseString(folder)
	title := parsed.Title
	if title == "" {
		title = strings.NewReplacer(".", " ", "_", " ").Replace(folder)
	}
	title = trailingGroup.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// Scan walks the library directory and returns catalog matches for every
// folder that is not already tracked. Folders whose guessed title tokens
// are a subset of an existing game's title tokens are treated as already
// in the library and skipped.
func (s *Scanner) Scan(ctx context.Context) ([]ScanResult, error) {
	entries, err := os.ReadDir(s.LibraryDir)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}

	games, err := s.store.ListGames()
	if err != nil {
		return nil, err
	}
	tracked := make(map[string]struct{}, len(games))
	titleTokenSets := make([]map[string]struct{}, 0, len(games))
	for _, g := range games {
		if g.LocalPath != "" {
			tracked[g.LocalPath] = struct{}{}
		}
		titleTokenSets = append(titleTokenSets, release.Tokens(g.Title))
	}

	var results []ScanResult
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		folder := entry.Name()
		if _, ok := tracked[folder]; ok {
			continue
		}

		guessed := GuessTitle(folder)
		if guessed == "" {
			continue
		}
		if matchesExistingTitle(release.Tokens(guessed), titleTokenSets) {
			s.log.Debugw("folder matches a tracked title, skipping",
				zap.String("folder", folder), zap.String("guessed", guessed))
			continue
		}

		matches, err := s.meta.SearchGames(ctx, guessed)
		if err != nil {
			s.log.Warnw("metadata search failed during scan",
				zap.String("guessed", guessed), zap.Error(err))
			matches = nil
		}
		rankMatches(guessed, matches)

		results = append(results, ScanResult{
			Folder:       folder,
			GuessedTitle: guessed,
			Matches:      matches,
		})
	}
	return results, nil
}

// matchesExistingTitle reports whether the guessed tokens are a subset of
// any tracked game's title tokens, e.g. "7 Days" inside "7 Days to Die".
func matchesExistingTitle(guessed map[string]struct{}, existing []map[string]struct{}) bool {
	if len(guessed) == 0 {
		return false
	}
	for _, titleSet := range existing {
		subset := true
		for tok := range guessed {
			if _, ok := titleSet[tok]; !ok {
				subset = false
				break
			}
		}
		if subset {
			return true
		}
	}
	return false
}

// rankMatches orders catalog hits by fuzzy rank distance to the guess.
func rankMatches(guessed string, matches []igdb.Game) {
	sort.SliceStable(matches, func(i, j int) bool {
		a := fuzzy.RankMatchNormalizedFold(guessed, matches[i].Name)
		b := fuzzy.RankMatchNormalizedFold(guessed, matches[j].Name)
		if a < 0 {
			a = len(matches[i].Name) + 100
		}
		if b < 0 {
			b = len(matches[j].Name) + 100
		}
		return a < b
	})
}

// Import records a confirmed folder/catalog match as an owned game.
func (s *Scanner) Import(folder string, match igdb.Game) error {
	igdbID := fmt.Sprintf("%d", match.ID)
	exists, err := s.store.GameExists(igdbID, folder)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%q is already in the library", match.Name)
	}

	game := &db.Game{
		IGDBID:      &igdbID,
		Title:       match.Name,
		Slug:        match.Slug,
		CoverURL:    match.CoverURL(),
		ReleaseDate: match.ReleaseDate(),
		Status:      db.StatusImported,
		LocalPath:   folder,
	}
	if err := s.store.CreateGame(game); err != nil {
		return fmt.Errorf("import %q: %w", match.Name, err)
	}
	s.log.Infow("imported from library scan",
		zap.String("title", match.Name), zap.String("folder", folder))
	return nil
}
