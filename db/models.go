package db

import (
	"time"

	"gorm.io/gorm"
)

// Game acquisition statuses. A game moves Monitoring -> Cracked (Scene|P2P)
// -> Snatched -> Downloading -> Downloaded -> Imported. Processing is a
// transient "scan in flight" marker used by the immediate check queue.
const (
	StatusMonitoring   = "Monitoring"
	StatusProcessing   = "Processing"
	StatusCrackedScene = "Cracked (Scene)"
	StatusCrackedP2P   = "Cracked (P2P)"
	StatusSnatched     = "Snatched"
	StatusDownloading  = "Downloading"
	StatusDownloaded   = "Downloaded"
	StatusImported     = "Imported"
	StatusError        = "Error"
)

// AdditionalRelease statuses (small independent lifecycle).
const (
	AddonNotSnatched = "Not Snatched"
	AddonDownloading = "Downloading"
	AddonDownloaded  = "Downloaded"
	AddonImported    = "Imported"
)

// Owned reports whether a status is a terminal "in the library" state.
// Reconciliation must never replace the primary release of an owned game.
func Owned(status string) bool {
	return status == StatusImported
}

// DownloadInFlight reports whether the game's primary release is tied to
// a submitted download. The primary must stay pinned to the torrent the
// post-processor will look for, so reconciliation treats these states
// like owned ones.
func DownloadInFlight(status string) bool {
	switch status {
	case StatusSnatched, StatusDownloading, StatusDownloaded, StatusError:
		return true
	}
	return false
}

// Game represents a monitored or owned title in the database
type Game struct {
	gorm.Model
	IGDBID *string `gorm:"uniqueIndex"` // External catalog id, nil until resolved
	Title  string  `gorm:"not null"`    // Official title from IGDB
	Slug   string

	CoverURL       string
	ReleaseDate    *time.Time
	Summary        string
	Genres         string // Comma-separated
	CriticScore    int
	UserScore      int
	ScreenshotURLs string // Comma-separated
	VideoURLs      string // Comma-separated

	Status        string `gorm:"not null;default:Monitoring"`
	ReleaseName   string // Primary release; all three fields set together or not at all
	ReleaseSource string
	ReleaseTier   string
	NfoPath       string
	NfoImgPath    string
	TorrentHash   string
	LocalPath     string // Folder name inside the library, set on import

	NeedsReleaseCheck bool `gorm:"not null;default:false"`
	NeedsContentScan  bool `gorm:"not null;default:false"`

	AlternativeReleases []AlternativeRelease `gorm:"constraint:OnDelete:CASCADE"`
	AdditionalReleases  []AdditionalRelease  `gorm:"constraint:OnDelete:CASCADE"`
}

// HasPrimaryRelease reports whether a primary release has been recorded.
func (g *Game) HasPrimaryRelease() bool {
	return g.ReleaseName != ""
}

// AlternativeRelease is a non-primary base-game candidate kept for user choice.
// Name is unique within one game.
type AlternativeRelease struct {
	gorm.Model
	ReleaseName string `gorm:"size:300;not null;uniqueIndex:idx_alt_game_name"`
	Source      string `gorm:"size:50;not null"`
	GameID      uint   `gorm:"not null;uniqueIndex:idx_alt_game_name"`
}

// AdditionalRelease is an add-on (update, DLC, fix, trainer) for a game.
// ReleaseName is globally unique so rediscovery from another source or a
// later scan pass never duplicates a row.
type AdditionalRelease struct {
	gorm.Model
	ReleaseName string `gorm:"not null;uniqueIndex"`
	Type        string `gorm:"not null"` // Update, DLC, Fix, Trainer
	Status      string `gorm:"not null;default:'Not Snatched'"`
	Source      string `gorm:"size:50"`
	TorrentHash string
	GameID      uint `gorm:"not null"`
}

// DiscoverCache stores the raw JSON content of an IGDB discover list
type DiscoverCache struct {
	ListName  string `gorm:"primaryKey"` // e.g. 'anticipated', 'coming_soon'
	Content   string `gorm:"not null"`
	UpdatedAt time.Time
}
