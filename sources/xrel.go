package sources

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"gamearr/release"
)

const xrelAPIURL = "https://api.xrel.to/v2/search/releases.json"

// Xrel queries the xrel.to release archive. It reaches much further back
// than the pre-databases, which makes it the backfill source for titles
// released years ago. Scene and P2P sections are searched together and the
// tier comes from which list a hit landed in.
type Xrel struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	log        *zap.SugaredLogger
}

func NewXrel(userAgent string, log *zap.SugaredLogger) *Xrel {
	return &Xrel{
		BaseURL:    xrelAPIURL,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
}

func (x *Xrel) Label() string { return "xrel.to" }

type xrelRelease struct {
	Dirname   string `json:"dirname"`
	Time      int64  `json:"time"`
	GroupName string `json:"group_name"`
}

type xrelResponse struct {
	TotalCount int           `json:"total_count"`
	Results    []xrelRelease `json:"results"`
	P2PResults []xrelRelease `json:"p2p_results"`
}

func (x *Xrel) Search(ctx context.Context, phrase string) []Result {
	params := url.Values{}
	params.Set("q", sanitizePhrase(phrase))
	params.Set("scene", "1")
	params.Set("p2p", "1")
	params.Set("limit", "25")

	var resp xrelResponse
	if err := getJSON(ctx, x.HTTPClient, x.UserAgent, x.BaseURL, params, &resp); err != nil {
		x.log.Warnw("xrel.to search failed", zap.String("phrase", phrase), zap.Error(err))
		return nil
	}

	results := make([]Result, 0, len(resp.Results)+len(resp.P2PResults))
	appendHits := func(hits []xrelRelease, tier release.Tier) {
		for _, hit := range hits {
			if hit.Dirname == "" {
				continue
			}
			var seen *time.Time
			if hit.Time > 0 {
				t := time.Unix(hit.Time, 0).UTC()
				seen = &t
			}
			results = append(results, Result{
				Name:   hit.Dirname,
				Source: x.Label(),
				Tier:   tier,
				Seen:   seen,
			})
		}
	}
	appendHits(resp.Results, release.TierScene)
	appendHits(resp.P2PResults, release.TierP2P)
	return dedupe(results)
}
