package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"gamearr/release"
)

const predbNetAPIURL = "https://api.predb.net/"

// PreDBNet queries api.predb.net, restricted server-side to GAMES sections.
type PreDBNet struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	log        *zap.SugaredLogger
}

func NewPreDBNet(userAgent string, log *zap.SugaredLogger) *PreDBNet {
	return &PreDBNet{
		BaseURL:    predbNetAPIURL,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
}

func (p *PreDBNet) Label() string { return "predb.net" }

type predbNetResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Release string `json:"release"`
		Group   string `json:"group"`
		Section string `json:"section"`
		PreTime int64  `json:"pretime"`
	} `json:"data"`
}

func (p *PreDBNet) Search(ctx context.Context, phrase string) []Result {
	params := url.Values{}
	params.Set("type", "search")
	params.Set("q", sanitizePhrase(phrase))
	params.Set("section", "GAMES")
	params.Set("sort", "DESC")

	var resp predbNetResponse
	if err := getJSON(ctx, p.HTTPClient, p.UserAgent, p.BaseURL, params, &resp); err != nil {
		p.log.Warnw("predb.net search failed", zap.String("phrase", phrase), zap.Error(err))
		return nil
	}

	results := make([]Result, 0, len(resp.Data))
	for _, row := range resp.Data {
		if row.Release == "" {
			continue
		}
		var seen *time.Time
		if row.PreTime > 0 {
			t := time.Unix(row.PreTime, 0).UTC()
			seen = &t
		}
		results = append(results, Result{
			Name:   row.Release,
			Source: p.Label(),
			Tier:   release.TierScene,
			Seen:   seen,
		})
	}
	return dedupe(results)
}

// sanitizePhrase strips punctuation the pre-database search chokes on,
// keeping letters, digits and spaces only.
func sanitizePhrase(phrase string) string {
	var b strings.Builder
	for _, r := range phrase {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
