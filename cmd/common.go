package cmd

import (
	"fmt"
	"strings"

	"gamearr/config"
	"gamearr/db"
	"gamearr/engine"
	"gamearr/igdb"
	"gamearr/library"
	"gamearr/logger"
	"gamearr/qbit"
	"gamearr/sources"

	"go.uber.org/zap"
)

// app bundles the long-lived services commands share.
type app struct {
	cfg       config.Config
	store     *db.Store
	engine    *engine.Engine
	igdb      *igdb.Client
	qbit      *qbit.Client
	scanner   *library.Scanner
	processor *library.PostProcessor
}

// bootstrap handles shared initialization logic for commands.
func bootstrap(path string) *app {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	db.InitDatabase(cfg.DatabasePath)
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	if !cfg.IGDBConfigured() {
		logger.Log.Fatal("Error: TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET must be set.")
	}

	meta, err := igdb.NewClient(cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to create IGDB client", zap.Error(err))
	}

	store := db.NewStore(db.DB)
	qb := qbit.NewClient(cfg, logger.Log)
	nfo := engine.NewNfoFetcher(cfg.NfoDir, cfg.UserAgent, logger.Log)
	eng := engine.New(store, buildAdapters(cfg), nfo, logger.Log)

	return &app{
		cfg:       cfg,
		store:     store,
		engine:    eng,
		igdb:      meta,
		qbit:      qb,
		scanner:   library.NewScanner(store, meta, cfg.LibraryPath, logger.Log),
		processor: library.NewPostProcessor(store, cfg.DownloadsPath, cfg.LibraryPath, logger.Log),
	}
}

// gameFromCatalog maps a full IGDB record onto a database row.
func gameFromCatalog(hit *igdb.Game) *db.Game {
	igdbID := fmt.Sprintf("%d", hit.ID)
	screenshots := make([]string, 0, len(hit.Screenshots))
	for _, s := range hit.Screenshots {
		screenshots = append(screenshots, s.URL)
	}
	videos := make([]string, 0, len(hit.Videos))
	for _, v := range hit.Videos {
		videos = append(videos, v.VideoID)
	}
	return &db.Game{
		IGDBID:         &igdbID,
		Title:          hit.Name,
		Slug:           hit.Slug,
		CoverURL:       hit.CoverURL(),
		ReleaseDate:    hit.ReleaseDate(),
		Summary:        hit.Summary,
		Genres:         strings.Join(hit.GenreNames(), ","),
		CriticScore:    int(hit.AggregatedRating),
		UserScore:      int(hit.Rating),
		ScreenshotURLs: strings.Join(screenshots, ","),
		VideoURLs:      strings.Join(videos, ","),
	}
}

// buildAdapters assembles the release source list. Reddit is skipped
// entirely when credentials are missing, the rest need no auth.
func buildAdapters(cfg config.Config) []sources.Adapter {
	adapters := []sources.Adapter{
		sources.NewPreDBNet(cfg.UserAgent, logger.Log),
		sources.NewPreDBOvh(cfg.UserAgent, logger.Log),
		sources.NewXrel(cfg.UserAgent, logger.Log),
		sources.NewFitGirl(cfg.FitGirlFeedURL, cfg.UserAgent, logger.Log),
	}
	if cfg.RedditConfigured() {
		adapters = append(adapters, sources.NewReddit(
			cfg.RedditClientID, cfg.RedditClientSecret,
			cfg.RedditUsername, cfg.RedditPassword,
			logger.Log,
		))
	} else {
		logger.Log.Info("Reddit credentials not set, skipping the r/CrackWatch source")
	}
	return adapters
}
