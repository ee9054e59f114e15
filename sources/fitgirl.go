package sources

import (
	"context"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"gamearr/release"
)

const defaultFitGirlFeedURL = "https://fitgirl-repacks.site/feed/"

// LabelFitGirl identifies results from the repack feed. The engine holds
// these to a stricter title-similarity bar than curated pre-databases.
const LabelFitGirl = "fitgirl"

// FitGirl reads the repack site's RSS feed. The feed only carries the last
// few dozen posts, so this source finds recent repacks only; entries are
// matched against the search phrase here because the feed has no search.
type FitGirl struct {
	FeedURL string
	parser  *gofeed.Parser
	log     *zap.SugaredLogger
}

func NewFitGirl(feedURL, userAgent string, log *zap.SugaredLogger) *FitGirl {
	if feedURL == "" {
		feedURL = defaultFitGirlFeedURL
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &FitGirl{FeedURL: feedURL, parser: parser, log: log}
}

func (f *FitGirl) Label() string { return LabelFitGirl }

func (f *FitGirl) Search(ctx context.Context, phrase string) []Result {
	feed, err := f.parser.ParseURLWithContext(f.FeedURL, ctx)
	if err != nil {
		f.log.Warnw("fitgirl feed fetch failed", zap.String("url", f.FeedURL), zap.Error(err))
		return nil
	}

	var results []Result
	for _, item := range feed.Items {
		if item == nil || item.Title == "" {
			continue
		}
		// Feed titles are human-readable post titles, not release names.
		// A loose similarity gate keeps obviously unrelated posts out;
		// the engine applies its stricter threshold on top.
		if release.Similarity(phrase, item.Title) < 0.5 {
			continue
		}
		results = append(results, Result{
			Name:   item.Title,
			Source: f.Label(),
			Tier:   release.TierRepack,
			Seen:   item.PublishedParsed,
		})
	}
	return dedupe(results)
}
