package qbit

import (
	"context"
	"fmt"
	"sort"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"go.uber.org/zap"

	"gamearr/config"
)

const submitTag = "gamearr"

// settleDelay gives qBittorrent a moment to register a freshly added
// torrent before the hash lookup.
var settleDelay = 2 * time.Second

// Client wraps the qBittorrent Web API for the download workflows: submit
// a magnet and learn its hash, poll tracked hashes, and drive the activity
// view.
type Client struct {
	qb       *qbt.Client
	Category string
	log      *zap.SugaredLogger
}

func NewClient(cfg config.Config, log *zap.SugaredLogger) *Client {
	qb := qbt.NewClient(qbt.Config{
		Host:     cfg.QbitHost,
		Username: cfg.QbitUser,
		Password: cfg.QbitPass,
		Timeout:  30,
	})
	return &Client{qb: qb, Category: cfg.QbitCategory, log: log}
}

func (c *Client) login(ctx context.Context) error {
	if err := c.qb.LoginCtx(ctx); err != nil {
		return fmt.Errorf("qbittorrent login: %w", err)
	}
	return nil
}

// Submit adds a magnet link under the gamearr category and returns the new
// torrent's hash. The Web API does not return the hash on add, so the
// newest torrent in the category is looked up after a short settle delay.
func (c *Client) Submit(ctx context.Context, magnet string) (string, error) {
	if err := c.login(ctx); err != nil {
		return "", err
	}

	opts := map[string]string{
		"category": c.Category,
		"tags":     submitTag,
	}
	if err := c.qb.AddTorrentFromUrlCtx(ctx, magnet, opts); err != nil {
		return "", fmt.Errorf("qbittorrent add: %w", err)
	}

	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	torrents, err := c.qb.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Category: c.Category})
	if err != nil {
		return "", fmt.Errorf("qbittorrent list after add: %w", err)
	}
	if len(torrents) == 0 {
		return "", fmt.Errorf("torrent not registered after add")
	}
	sort.Slice(torrents, func(i, j int) bool {
		return torrents[i].AddedOn > torrents[j].AddedOn
	})
	return torrents[0].Hash, nil
}

// Status is the engine-facing view of one tracked download.
type Status struct {
	Hash     string
	Name     string
	Progress float64
	State    qbt.TorrentState
}

// Done reports whether the download finished.
func (s Status) Done() bool { return s.Progress >= 1 }

// Downloading reports the states that display as an in-progress download.
func (s Status) Downloading() bool {
	switch s.State {
	case qbt.TorrentStateDownloading, qbt.TorrentStatePausedDl,
		qbt.TorrentStateMetaDl, qbt.TorrentStateStalledDl,
		qbt.TorrentStateCheckingDl, qbt.TorrentStateAllocating:
		return true
	}
	return false
}

// Errored reports a failed download.
func (s Status) Errored() bool { return s.State == qbt.TorrentStateError }

// StatusByHash fetches the status of the given hashes. Hashes missing from
// the result have vanished from the client.
func (c *Client) StatusByHash(ctx context.Context, hashes []string) (map[string]Status, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}

	torrents, err := c.qb.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Hashes: hashes})
	if err != nil {
		return nil, fmt.Errorf("qbittorrent status: %w", err)
	}

	statuses := make(map[string]Status, len(torrents))
	for _, t := range torrents {
		statuses[t.Hash] = Status{
			Hash:     t.Hash,
			Name:     t.Name,
			Progress: t.Progress,
			State:    t.State,
		}
	}
	return statuses, nil
}

// ListCategory returns all torrents in the gamearr category for the
// activity view.
func (c *Client) ListCategory(ctx context.Context) ([]qbt.Torrent, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}
	torrents, err := c.qb.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Category: c.Category})
	if err != nil {
		return nil, fmt.Errorf("qbittorrent list: %w", err)
	}
	return torrents, nil
}

// Cancel removes a torrent, optionally with its data.
func (c *Client) Cancel(ctx context.Context, hash string, deleteFiles bool) error {
	if err := c.login(ctx); err != nil {
		return err
	}
	if err := c.qb.DeleteTorrentsCtx(ctx, []string{hash}, deleteFiles); err != nil {
		return fmt.Errorf("qbittorrent delete: %w", err)
	}
	return nil
}

func (c *Client) Pause(ctx context.Context, hash string) error {
	if err := c.login(ctx); err != nil {
		return err
	}
	if err := c.qb.PauseCtx(ctx, []string{hash}); err != nil {
		return fmt.Errorf("qbittorrent pause: %w", err)
	}
	return nil
}

func (c *Client) Resume(ctx context.Context, hash string) error {
	if err := c.login(ctx); err != nil {
		return err
	}
	if err := c.qb.ResumeCtx(ctx, []string{hash}); err != nil {
		return fmt.Errorf("qbittorrent resume: %w", err)
	}
	return nil
}
