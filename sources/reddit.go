package sources

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"
	"go.uber.org/zap"

	"gamearr/release"
)

const crackwatchSubreddit = "CrackWatch"

// dailyReleaseRow matches one row of the "Daily Releases" markdown table:
// | Game.Name-GROUP | Group | ... |
var dailyReleaseRow = regexp.MustCompile(`(?m)^\|\s*([^|]+?)\s*\|\s*([^|]+?)\s*\|`)

// Reddit searches the r/CrackWatch daily release threads. The thread body
// is a markdown table of release name and group columns; every row of a
// matching thread goes through the same classification as any other
// source's result. Unconfigured credentials disable the source silently.
type Reddit struct {
	client *reddit.Client
	log    *zap.SugaredLogger
}

// NewReddit returns a disabled adapter (nil client) when any credential is
// missing.
func NewReddit(clientID, clientSecret, username, password string, log *zap.SugaredLogger) *Reddit {
	if clientID == "" || clientSecret == "" || username == "" || password == "" {
		return &Reddit{log: log}
	}
	client, err := reddit.NewClient(reddit.Credentials{
		ID:       clientID,
		Secret:   clientSecret,
		Username: username,
		Password: password,
	})
	if err != nil {
		log.Warnw("reddit client init failed, source disabled", zap.Error(err))
		return &Reddit{log: log}
	}
	return &Reddit{client: client, log: log}
}

func (r *Reddit) Label() string { return "reddit" }

func (r *Reddit) Search(ctx context.Context, phrase string) []Result {
	if r.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	query := `author:EssenseOfMagic "` + phrase + `"`
	posts, _, err := r.client.Subreddit.SearchPosts(ctx, query, crackwatchSubreddit, &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: 100},
		},
		Sort: "new",
	})
	if err != nil {
		r.log.Warnw("reddit search failed", zap.String("phrase", phrase), zap.Error(err))
		return nil
	}

	var results []Result
	for _, post := range posts {
		if post == nil || !strings.Contains(post.Title, "Daily Releases") {
			continue
		}
		var seen *time.Time
		if post.Created != nil {
			t := post.Created.Time
			seen = &t
		}
		for _, row := range dailyReleaseRow.FindAllStringSubmatch(post.Body, -1) {
			name := stripMarkdownLink(strings.TrimSpace(row[1]))
			if name == "" || strings.EqualFold(name, "Game") || strings.HasPrefix(name, ":-") || strings.HasPrefix(name, "---") {
				continue // header and separator rows
			}
			if release.Similarity(phrase, name) < 0.5 {
				continue
			}
			results = append(results, Result{
				Name:   name,
				Source: r.Label(),
				Tier:   release.TierP2P,
				Seen:   seen,
			})
		}
	}
	return dedupe(results)
}

var markdownLink = regexp.MustCompile(`^\[([^\]]+)\]\([^)]*\)$`)

// stripMarkdownLink unwraps "[Name-GROUP](https://...)" table cells.
func stripMarkdownLink(cell string) string {
	if m := markdownLink.FindStringSubmatch(cell); m != nil {
		return strings.TrimSpace(m[1])
	}
	return cell
}
