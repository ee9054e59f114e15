package sources

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"gamearr/release"
)

const predbOvhAPIURL = "https://predb.ovh/api/v1/"

// PreDBOvh is the second scene pre-database. Its catalog overlaps predb.net
// but indexes some groups earlier, so both run every pass.
type PreDBOvh struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	log        *zap.SugaredLogger
}

func NewPreDBOvh(userAgent string, log *zap.SugaredLogger) *PreDBOvh {
	return &PreDBOvh{
		BaseURL:    predbOvhAPIURL,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
}

func (p *PreDBOvh) Label() string { return "predb.ovh" }

type predbOvhResponse struct {
	Status string `json:"status"`
	Data   struct {
		RowCount int `json:"rowCount"`
		Rows     []struct {
			Name  string `json:"name"`
			Team  string `json:"team"`
			Cat   string `json:"cat"`
			PreAt int64  `json:"preAt"`
		} `json:"rows"`
	} `json:"data"`
}

func (p *PreDBOvh) Search(ctx context.Context, phrase string) []Result {
	params := url.Values{}
	params.Set("q", sanitizePhrase(phrase))

	var resp predbOvhResponse
	if err := getJSON(ctx, p.HTTPClient, p.UserAgent, p.BaseURL, params, &resp); err != nil {
		p.log.Warnw("predb.ovh search failed", zap.String("phrase", phrase), zap.Error(err))
		return nil
	}

	results := make([]Result, 0, len(resp.Data.Rows))
	for _, row := range resp.Data.Rows {
		if row.Name == "" {
			continue
		}
		var seen *time.Time
		if row.PreAt > 0 {
			t := time.Unix(row.PreAt, 0).UTC()
			seen = &t
		}
		results = append(results, Result{
			Name:   row.Name,
			Source: p.Label(),
			Tier:   release.TierScene,
			Seen:   seen,
		})
	}
	return dedupe(results)
}
