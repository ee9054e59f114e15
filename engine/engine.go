package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gamearr/db"
	"gamearr/release"
	"gamearr/sources"
)

const (
	// similarityThreshold is the minimum title-match confidence for a
	// base-game candidate.
	similarityThreshold = 0.7
	// repackSimilarityThreshold is stricter: the repack feed serves
	// human-readable post titles with no pre-filtering, which overlap
	// more easily by accident than curated release names.
	repackSimilarityThreshold = 0.8
)

// sourcePacing spaces out the sequential source queries to stay inside the
// external services' informal rate limits.
var sourcePacing = 500 * time.Millisecond

// ArtifactFetcher fetches release metadata artifacts (NFO text and image)
// for a confirmed primary release. Best effort: failures leave the paths
// empty and are never fatal to a reconciliation pass.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, releaseName string) (nfoPath, imgPath string)
}

// Engine reconciles one game at a time against every configured release
// source. It is the sole writer of game acquisition state.
type Engine struct {
	store    *db.Store
	adapters []sources.Adapter
	nfo      ArtifactFetcher
	log      *zap.SugaredLogger
}

func New(store *db.Store, adapters []sources.Adapter, nfo ArtifactFetcher, log *zap.SugaredLogger) *Engine {
	return &Engine{store: store, adapters: adapters, nfo: nfo, log: log}
}

// Reconcile runs one full pass for a game: query all sources, classify and
// score every raw name, pick a primary base release, and commit the result
// in a single transaction. On write failure the check flag is re-set so
// the next sweep retries.
func (e *Engine) Reconcile(ctx context.Context, gameID uint) error {
	game, err := e.store.GameByID(gameID)
	if err != nil {
		return fmt.Errorf("load game %d: %w", gameID, err)
	}
	e.log.Infow("reconciling", zap.String("title", game.Title), zap.String("status", game.Status))

	merged := e.collect(ctx, game.Title)
	if len(merged) == 0 {
		e.log.Infow("no results from any source", zap.String("title", game.Title))
		return e.finishEmptyPass(game, nil)
	}

	var baseCands []release.Candidate
	var addons []db.AdditionalRelease
	for _, res := range merged {
		cand := release.Classify(res.Name, res.Source, res.Tier, res.Seen)
		switch cand.Kind {
		case release.KindNoise:
			continue
		case release.KindAddOn:
			addons = append(addons, db.AdditionalRelease{
				ReleaseName: cand.RawName,
				Type:        cand.AddonType,
				Status:      db.AddonNotSnatched,
				Source:      cand.Source,
			})
		case release.KindBaseGame:
			if keep := e.vetBaseCandidate(game, &cand); keep {
				baseCands = append(baseCands, cand)
			}
		}
	}

	release.RankCandidates(baseCands)

	winner := pickPrimary(baseCands)
	if winner == nil {
		// Add-ons are still worth recording on a miss.
		return e.finishEmptyPass(game, addons)
	}

	game.NeedsReleaseCheck = false

	if db.Owned(game.Status) || db.DownloadInFlight(game.Status) {
		// Never swap the primary of an imported game or one whose
		// download is in flight; only collect new alternatives for the
		// user to see.
		alts := alternativesFrom(baseCands, game.ReleaseName)
		if err := e.store.SaveReconciliation(game, false, alts, addons); err != nil {
			return e.failPass(game, err)
		}
		e.log.Infow("primary protected, alternatives merged",
			zap.String("title", game.Title), zap.String("status", game.Status),
			zap.Int("alternatives", len(alts)))
		return nil
	}

	game.ReleaseName = winner.RawName
	game.ReleaseSource = winner.Source
	game.ReleaseTier = string(winner.Tier)
	game.Status = winner.Tier.CrackedStatus()
	if e.nfo != nil {
		game.NfoPath, game.NfoImgPath = e.nfo.Fetch(ctx, winner.RawName)
	}

	alts := alternativesFrom(baseCands, winner.RawName)
	if err := e.store.SaveReconciliation(game, true, alts, addons); err != nil {
		return e.failPass(game, err)
	}

	e.log.Infow("primary release selected",
		zap.String("title", game.Title),
		zap.String("release", winner.RawName),
		zap.String("tier", string(winner.Tier)),
		zap.Int("alternatives", len(alts)))
	return nil
}

// collect queries every adapter in sequence and merges the raw names.
// First seen source wins on duplicates so a later, lower-trust source
// cannot overwrite an earlier adapter's label or tier.
func (e *Engine) collect(ctx context.Context, title string) []sources.Result {
	seen := make(map[string]struct{})
	var merged []sources.Result
	for i, adapter := range e.adapters {
		if i > 0 {
			select {
			case <-time.After(sourcePacing):
			case <-ctx.Done():
				return merged
			}
		}
		results := adapter.Search(ctx, title)
		e.log.Debugw("source queried",
			zap.String("source", adapter.Label()), zap.Int("results", len(results)))
		for _, res := range results {
			if _, ok := seen[res.Name]; ok {
				continue
			}
			seen[res.Name] = struct{}{}
			merged = append(merged, res)
		}
	}
	return merged
}

// vetBaseCandidate applies the title guard and the relevancy scorer.
// Returns false for candidates excluded from consideration; the reasons
// are logged so rejects never vanish without trace.
func (e *Engine) vetBaseCandidate(game *db.Game, cand *release.Candidate) bool {
	threshold := similarityThreshold
	if cand.Source == sources.LabelFitGirl {
		threshold = repackSimilarityThreshold
	}
	if sim := release.Similarity(game.Title, cand.RawName); sim < threshold {
		return false
	}
	if !release.NumeralGuard(game.Title, cand.RawName) {
		e.log.Debugw("numeral guard rejected candidate",
			zap.String("title", game.Title), zap.String("candidate", cand.RawName))
		return false
	}
	cand.Score = release.Score(game.ReleaseDate, cand.Seen)
	if cand.Score <= release.HardReject {
		e.log.Infow("candidate hard-rejected by relevancy score",
			zap.String("title", game.Title), zap.String("candidate", cand.RawName))
		return false
	}
	return true
}

// pickPrimary returns the best non-platform-locked candidate, nil when
// every survivor is locked or the list is empty. Assumes ranked input.
func pickPrimary(ranked []release.Candidate) *release.Candidate {
	for i := range ranked {
		if !ranked[i].PlatformLocked {
			return &ranked[i]
		}
	}
	return nil
}

// alternativesFrom converts every candidate except the primary into
// AlternativeRelease rows, deduplicated by name.
func alternativesFrom(cands []release.Candidate, primaryName string) []db.AlternativeRelease {
	seen := map[string]struct{}{primaryName: {}}
	var alts []db.AlternativeRelease
	for _, cand := range cands {
		if _, ok := seen[cand.RawName]; ok {
			continue
		}
		seen[cand.RawName] = struct{}{}
		alts = append(alts, db.AlternativeRelease{
			ReleaseName: cand.RawName,
			Source:      cand.Source,
		})
	}
	return alts
}

// finishEmptyPass ends a pass that found no primary release. A transient
// Processing status reverts to Monitoring, anything else stays put, and
// the check flag clears together with any collected add-ons in one
// transaction.
func (e *Engine) finishEmptyPass(game *db.Game, addons []db.AdditionalRelease) error {
	game.NeedsReleaseCheck = false
	if game.Status == db.StatusProcessing {
		game.Status = db.StatusMonitoring
	}
	if err := e.store.SaveReconciliation(game, false, nil, addons); err != nil {
		return e.failPass(game, err)
	}
	return nil
}

// failPass re-arms the check flag so the next sweep retries the game, then
// surfaces the original error.
func (e *Engine) failPass(game *db.Game, err error) error {
	if markErr := e.store.MarkReleaseCheck(game.ID, true); markErr != nil {
		e.log.Errorw("failed to re-arm release check", zap.Error(markErr))
	}
	return fmt.Errorf("reconcile %q: %w", game.Title, err)
}

// SubmitDownload hands the primary release's magnet link to the download
// client and moves the game to Snatched. On failure the status reverts to
// its pre-attempt value so the game stays eligible for retry.
func (e *Engine) SubmitDownload(ctx context.Context, gameID uint, submit func(context.Context) (string, error)) error {
	game, err := e.store.GameByID(gameID)
	if err != nil {
		return fmt.Errorf("load game %d: %w", gameID, err)
	}
	if !game.HasPrimaryRelease() {
		return fmt.Errorf("game %q has no primary release to snatch", game.Title)
	}
	prevStatus := game.Status

	if err := e.store.UpdateStatus(game.ID, db.StatusSnatched); err != nil {
		return err
	}
	hash, err := submit(ctx)
	if err != nil {
		if revertErr := e.store.UpdateStatus(game.ID, prevStatus); revertErr != nil {
			e.log.Errorw("failed to revert status after submit failure", zap.Error(revertErr))
		}
		return fmt.Errorf("submit download for %q: %w", game.Title, err)
	}
	return e.store.SetDownloadHandle(game.ID, db.StatusSnatched, hash)
}

// RevertVanishedDownload handles a torrent disappearing from the download
// client before completion: back to the tier-appropriate cracked state,
// never to Monitoring, and the handle is cleared.
func (e *Engine) RevertVanishedDownload(game *db.Game) error {
	status := release.Tier(game.ReleaseTier).CrackedStatus()
	e.log.Warnw("download vanished from client",
		zap.String("title", game.Title), zap.String("revert_to", status))
	return e.store.ClearDownloadHandle(game.ID, status)
}
