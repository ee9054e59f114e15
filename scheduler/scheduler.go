package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gamearr/db"
	"gamearr/engine"
	"gamearr/igdb"
	"gamearr/library"
	"gamearr/qbit"
)

// Job cadences. Each job runs on its own ticker; jobs never run the
// engine concurrently for the same game because the immediate-check drain
// claims games atomically and the sweep only touches Monitoring rows.
const (
	releaseSweepInterval = 30 * time.Minute
	checkQueueInterval   = 15 * time.Second
	downloadPollInterval = time.Minute
	postProcessInterval  = 5 * time.Minute
	contentScanInterval  = 6 * time.Hour
	discoverInterval     = 24 * time.Hour

	// hotWindowDays: games released within this window get checked on
	// every sweep; older backlog games only during the backlog hour.
	hotWindowDays = 30
	backlogHour   = 3
)

// Scheduler drives the periodic jobs until its context is cancelled.
type Scheduler struct {
	store     *db.Store
	engine    *engine.Engine
	qb        *qbit.Client
	igdb      *igdb.Client
	processor *library.PostProcessor
	log       *zap.SugaredLogger

	now func() time.Time
}

func New(store *db.Store, eng *engine.Engine, qb *qbit.Client, meta *igdb.Client, processor *library.PostProcessor, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		store:     store,
		engine:    eng,
		qb:        qb,
		igdb:      meta,
		processor: processor,
		log:       log,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled. Every job gets its own goroutine and
// ticker; an in-flight job finishes its pass before the goroutine exits.
func (s *Scheduler) Run(ctx context.Context) {
	// Nothing can be mid-pass before the jobs start, so Processing rows
	// are leftovers from a run that died; put them back on the queue's
	// radar.
	if recovered, err := s.store.RecoverStaleProcessing(); err != nil {
		s.log.Errorw("stale processing recovery failed", zap.Error(err))
	} else if recovered > 0 {
		s.log.Infow("recovered abandoned checks", zap.Int64("games", recovered))
	}

	var wg sync.WaitGroup

	jobs := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context)
	}{
		{"release-sweep", releaseSweepInterval, s.releaseSweep},
		{"check-queue", checkQueueInterval, s.drainCheckQueue},
		{"download-poll", downloadPollInterval, s.pollDownloads},
		{"post-process", postProcessInterval, s.postProcess},
		{"content-scan", contentScanInterval, s.contentScan},
		{"discover-refresh", discoverInterval, s.refreshDiscover},
	}

	for _, job := range jobs {
		wg.Add(1)
		go func(name string, interval time.Duration, fn func(context.Context)) {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					fn(ctx)
				}
			}
		}(job.name, job.interval, job.fn)
	}

	s.log.Infow("scheduler started", zap.Int("jobs", len(jobs)))
	wg.Wait()
	s.log.Info("scheduler stopped")
}

// releaseSweep reconciles Monitoring games. Future games are skipped, hot
// games (released within the last 30 days) are checked every sweep, and
// the backlog only during the designated early-morning hour.
func (s *Scheduler) releaseSweep(ctx context.Context) {
	games, err := s.store.ListGamesByStatus(db.StatusMonitoring)
	if err != nil {
		s.log.Errorw("release sweep: list games", zap.Error(err))
		return
	}
	if len(games) == 0 {
		return
	}

	now := s.now().UTC()
	runBacklog := now.Hour() == backlogHour
	if runBacklog {
		s.log.Info("backlog hour, sweeping older titles too")
	}

	for i := range games {
		if ctx.Err() != nil {
			return
		}
		game := &games[i]
		if !dueForSweep(game.ReleaseDate, now, runBacklog) {
			continue
		}
		if err := s.engine.Reconcile(ctx, game.ID); err != nil {
			s.log.Errorw("release sweep: reconcile failed",
				zap.String("title", game.Title), zap.Error(err))
		}
	}
}

// dueForSweep decides whether one Monitoring game gets checked this
// sweep. Unreleased or undated games never do; recent releases always do;
// the backlog only when the backlog hour is running.
func dueForSweep(releaseDate *time.Time, now time.Time, runBacklog bool) bool {
	if releaseDate == nil || releaseDate.After(now) {
		return false
	}
	hot := now.Sub(*releaseDate) <= hotWindowDays*24*time.Hour
	return hot || runBacklog
}

// drainCheckQueue handles the immediate-check queue with single-claim
// semantics: the claim commits before the slow network work starts.
func (s *Scheduler) drainCheckQueue(ctx context.Context) {
	games, err := s.store.ListReleaseCheckQueue()
	if err != nil {
		s.log.Errorw("check queue: list", zap.Error(err))
		return
	}
	for i := range games {
		if ctx.Err() != nil {
			return
		}
		game := &games[i]
		claimed, err := s.store.ClaimForCheck(game.ID)
		if err != nil {
			s.log.Errorw("check queue: claim failed", zap.Error(err))
			continue
		}
		if !claimed {
			continue // another tick got there first
		}
		if err := s.engine.Reconcile(ctx, game.ID); err != nil {
			s.log.Errorw("check queue: reconcile failed",
				zap.String("title", game.Title), zap.Error(err))
		}
	}
}

// pollDownloads maps download-client state onto game status. A torrent
// that vanished from the client reverts the game to its tier's cracked
// state with the handle cleared.
func (s *Scheduler) pollDownloads(ctx context.Context) {
	games, err := s.store.ListTrackedDownloads()
	if err != nil {
		s.log.Errorw("download poll: list", zap.Error(err))
		return
	}
	if len(games) == 0 {
		return
	}

	byHash := make(map[string]*db.Game, len(games))
	hashes := make([]string, 0, len(games))
	for i := range games {
		byHash[games[i].TorrentHash] = &games[i]
		hashes = append(hashes, games[i].TorrentHash)
	}

	statuses, err := s.qb.StatusByHash(ctx, hashes)
	if err != nil {
		s.log.Errorw("download poll: client unreachable", zap.Error(err))
		return
	}

	for hash, game := range byHash {
		status, active := statuses[hash]
		if !active {
			if err := s.engine.RevertVanishedDownload(game); err != nil {
				s.log.Errorw("download poll: revert failed", zap.Error(err))
			}
			continue
		}

		newStatus := game.Status
		switch {
		case status.Done():
			newStatus = db.StatusDownloaded
		case status.Downloading():
			newStatus = db.StatusDownloading
		case status.Errored():
			newStatus = db.StatusError
		}
		if newStatus != game.Status {
			if err := s.store.UpdateStatus(game.ID, newStatus); err != nil {
				s.log.Errorw("download poll: status update failed", zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) postProcess(ctx context.Context) {
	if err := s.processor.Run(); err != nil {
		s.log.Errorw("post-process sweep failed", zap.Error(err))
	}
}

// contentScan re-runs reconciliation for games flagged for an add-on
// check; the engine records any new update/DLC/fix rows as a side effect.
func (s *Scheduler) contentScan(ctx context.Context) {
	games, err := s.store.ListContentScanQueue()
	if err != nil {
		s.log.Errorw("content scan: list", zap.Error(err))
		return
	}
	for i := range games {
		if ctx.Err() != nil {
			return
		}
		game := &games[i]
		if err := s.engine.Reconcile(ctx, game.ID); err != nil {
			s.log.Errorw("content scan: reconcile failed",
				zap.String("title", game.Title), zap.Error(err))
			continue
		}
		if err := s.store.MarkContentScan(game.ID, false); err != nil {
			s.log.Errorw("content scan: clear flag failed", zap.Error(err))
		}
	}
}

// refreshDiscover re-fetches the IGDB front-page lists into the cache.
func (s *Scheduler) refreshDiscover(ctx context.Context) {
	if s.igdb == nil {
		return
	}
	lists, err := s.igdb.DiscoverLists(ctx)
	if err != nil {
		s.log.Errorw("discover refresh failed", zap.Error(err))
		return
	}
	for name, games := range lists {
		content, err := encodeGames(games)
		if err != nil {
			s.log.Errorw("discover encode failed", zap.String("list", name), zap.Error(err))
			continue
		}
		if err := s.store.PutDiscoverList(name, content); err != nil {
			s.log.Errorw("discover cache write failed", zap.String("list", name), zap.Error(err))
			continue
		}
		s.log.Infow("discover list cached", zap.String("list", name), zap.Int("games", len(games)))
	}
}

func encodeGames(games []igdb.Game) (string, error) {
	raw, err := json.Marshal(games)
	if err != nil {
		return "", fmt.Errorf("encode discover list: %w", err)
	}
	return string(raw), nil
}
