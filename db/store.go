package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the write path for game acquisition state. The reconciliation
// engine is its only mutating caller; everything it changes for one game
// commits in a single transaction.
type Store struct {
	gdb *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{gdb: gdb}
}

func (s *Store) GameByID(id uint) (*Game, error) {
	var game Game
	if err := s.gdb.First(&game, id).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Store) GameByIGDBID(igdbID string) (*Game, error) {
	var game Game
	err := s.gdb.Where("igdb_id = ?", igdbID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Store) GameBySlug(slug string) (*Game, error) {
	var game Game
	if err := s.gdb.Where("slug = ?", slug).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Store) ListGames() ([]Game, error) {
	var games []Game
	if err := s.gdb.Order("id DESC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (s *Store) ListGamesByStatus(statuses ...string) ([]Game, error) {
	var games []Game
	if err := s.gdb.Where("status IN ?", statuses).Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// ListReleaseCheckQueue returns games flagged for an immediate release check.
func (s *Store) ListReleaseCheckQueue() ([]Game, error) {
	var games []Game
	if err := s.gdb.Where("needs_release_check = ?", true).Order("updated_at ASC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// ListContentScanQueue returns games flagged for an add-on content scan.
func (s *Store) ListContentScanQueue() ([]Game, error) {
	var games []Game
	if err := s.gdb.Where("needs_content_scan = ?", true).Order("updated_at ASC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// ListTrackedDownloads returns games with an active torrent handle.
func (s *Store) ListTrackedDownloads() ([]Game, error) {
	var games []Game
	err := s.gdb.
		Where("torrent_hash <> ''").
		Where("status NOT IN ?", []string{StatusMonitoring, StatusImported}).
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// GameExists reports whether a game with the given external id or library
// folder is already tracked. Either argument may be empty.
func (s *Store) GameExists(igdbID, localPath string) (bool, error) {
	var count int64
	q := s.gdb.Model(&Game{})
	switch {
	case igdbID != "" && localPath != "":
		q = q.Where("igdb_id = ? OR local_path = ?", igdbID, localPath)
	case igdbID != "":
		q = q.Where("igdb_id = ?", igdbID)
	case localPath != "":
		q = q.Where("local_path = ?", localPath)
	default:
		return false, nil
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateGame(game *Game) error {
	return s.gdb.Create(game).Error
}

func (s *Store) SaveGame(game *Game) error {
	return s.gdb.Save(game).Error
}

func (s *Store) DeleteGame(id uint) error {
	return s.gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&AlternativeRelease{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", id).Delete(&AdditionalRelease{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Game{}, id).Error
	})
}

// ClaimForCheck atomically claims a game off the immediate-check queue.
// Monitoring games flip to Processing as the in-flight marker, and that
// flip commits before any slow network work starts, so a second worker
// tick cannot re-claim the same game. The work flag itself stays set: the
// engine clears it when the pass completes, so a crash mid-pass leaves
// the game flagged and recoverable (see RecoverStaleProcessing).
func (s *Store) ClaimForCheck(id uint) (bool, error) {
	res := s.gdb.Model(&Game{}).
		Where("id = ? AND needs_release_check = ? AND status <> ?", id, true, StatusProcessing).
		Update("status", gorm.Expr(
			"CASE WHEN status = ? THEN ? ELSE status END",
			StatusMonitoring, StatusProcessing,
		))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RecoverStaleProcessing reverts Processing games to Monitoring. Safe only
// when no reconciliation pass can be in flight, i.e. at process startup:
// any Processing row then is work a previous run abandoned, still flagged
// for the check queue to re-claim.
func (s *Store) RecoverStaleProcessing() (int64, error) {
	res := s.gdb.Model(&Game{}).
		Where("status = ?", StatusProcessing).
		Update("status", StatusMonitoring)
	return res.RowsAffected, res.Error
}

// MarkReleaseCheck sets or clears the release-check work flag.
func (s *Store) MarkReleaseCheck(id uint, needed bool) error {
	return s.gdb.Model(&Game{}).Where("id = ?", id).
		Update("needs_release_check", needed).Error
}

// MarkContentScan sets or clears the content-scan work flag.
func (s *Store) MarkContentScan(id uint, needed bool) error {
	return s.gdb.Model(&Game{}).Where("id = ?", id).
		Update("needs_content_scan", needed).Error
}

func (s *Store) UpdateStatus(id uint, status string) error {
	return s.gdb.Model(&Game{}).Where("id = ?", id).Update("status", status).Error
}

// SetDownloadHandle records a submitted download for a game.
func (s *Store) SetDownloadHandle(id uint, status, hash string) error {
	return s.gdb.Model(&Game{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "torrent_hash": hash}).Error
}

// ClearDownloadHandle drops a vanished download and reverts the status.
func (s *Store) ClearDownloadHandle(id uint, status string) error {
	return s.gdb.Model(&Game{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "torrent_hash": ""}).Error
}

func (s *Store) AlternativesForGame(gameID uint) ([]AlternativeRelease, error) {
	var alts []AlternativeRelease
	if err := s.gdb.Where("game_id = ?", gameID).Find(&alts).Error; err != nil {
		return nil, err
	}
	return alts, nil
}

func (s *Store) AdditionalForGame(gameID uint) ([]AdditionalRelease, error) {
	var addons []AdditionalRelease
	if err := s.gdb.Where("game_id = ?", gameID).Find(&addons).Error; err != nil {
		return nil, err
	}
	return addons, nil
}

func (s *Store) AdditionalByStatus(status string) ([]AdditionalRelease, error) {
	var addons []AdditionalRelease
	if err := s.gdb.Where("status = ?", status).Find(&addons).Error; err != nil {
		return nil, err
	}
	return addons, nil
}

func (s *Store) SaveAdditional(addon *AdditionalRelease) error {
	return s.gdb.Save(addon).Error
}

// SaveReconciliation commits the outcome of one reconciliation pass as a
// single unit: game field mutations, the alternative set, and any new
// add-on rows. replaceAlts selects between the rebuild branch (a new
// primary was chosen) and the append-only branch (owned games keep their
// primary; alternatives only accumulate).
func (s *Store) SaveReconciliation(game *Game, replaceAlts bool, alts []AlternativeRelease, addons []AdditionalRelease) error {
	return s.gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(game).Error; err != nil {
			return fmt.Errorf("save game: %w", err)
		}

		if replaceAlts {
			if err := tx.Where("game_id = ?", game.ID).Delete(&AlternativeRelease{}).Error; err != nil {
				return fmt.Errorf("clear alternatives: %w", err)
			}
			for i := range alts {
				alts[i].GameID = game.ID
				if err := tx.Create(&alts[i]).Error; err != nil {
					return fmt.Errorf("insert alternative: %w", err)
				}
			}
		} else {
			var existing []AlternativeRelease
			if err := tx.Where("game_id = ?", game.ID).Find(&existing).Error; err != nil {
				return fmt.Errorf("load alternatives: %w", err)
			}
			known := make(map[string]struct{}, len(existing))
			for _, alt := range existing {
				known[alt.ReleaseName] = struct{}{}
			}
			for i := range alts {
				if _, ok := known[alts[i].ReleaseName]; ok {
					continue
				}
				alts[i].GameID = game.ID
				if err := tx.Create(&alts[i]).Error; err != nil {
					return fmt.Errorf("append alternative: %w", err)
				}
				known[alts[i].ReleaseName] = struct{}{}
			}
		}

		for i := range addons {
			var count int64
			if err := tx.Model(&AdditionalRelease{}).
				Where("release_name = ?", addons[i].ReleaseName).
				Count(&count).Error; err != nil {
				return fmt.Errorf("check add-on: %w", err)
			}
			if count > 0 {
				continue // Global uniqueness: already recorded from an earlier pass or source
			}
			addons[i].GameID = game.ID
			if err := tx.Create(&addons[i]).Error; err != nil {
				return fmt.Errorf("insert add-on: %w", err)
			}
		}

		return nil
	})
}

// GetDiscoverList returns the cached JSON for a discover list, or "" when absent.
func (s *Store) GetDiscoverList(name string) (string, error) {
	var cache DiscoverCache
	err := s.gdb.First(&cache, "list_name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cache.Content, nil
}

// PutDiscoverList upserts the cached JSON for a discover list.
func (s *Store) PutDiscoverList(name, content string) error {
	cache := DiscoverCache{ListName: name, Content: content}
	return s.gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "list_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&cache).Error
}
