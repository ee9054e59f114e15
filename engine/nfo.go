package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
)

const nfoAPIURL = "https://api.predb.net/"

// NfoFetcher pulls the .nfo text and preview image for a release from the
// pre-database and stores them locally. Everything here is best effort.
type NfoFetcher struct {
	BaseURL    string
	StorageDir string
	UserAgent  string
	HTTPClient *http.Client
	log        *zap.SugaredLogger
}

func NewNfoFetcher(storageDir, userAgent string, log *zap.SugaredLogger) *NfoFetcher {
	return &NfoFetcher{
		BaseURL:    nfoAPIURL,
		StorageDir: storageDir,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type nfoResponse struct {
	Data struct {
		Nfo    string `json:"nfo"`
		NfoImg string `json:"nfo_img"`
	} `json:"data"`
}

// Fetch implements ArtifactFetcher. Empty strings mean "no artifact".
func (f *NfoFetcher) Fetch(ctx context.Context, releaseName string) (string, string) {
	payload, err := f.lookup(ctx, releaseName)
	if err != nil {
		f.log.Debugw("nfo lookup failed", zap.String("release", releaseName), zap.Error(err))
		return "", ""
	}

	if err := os.MkdirAll(f.StorageDir, 0755); err != nil {
		f.log.Warnw("cannot create nfo storage dir", zap.String("dir", f.StorageDir), zap.Error(err))
		return "", ""
	}

	base := safeFilename(releaseName)
	var nfoPath, imgPath string
	if payload.Data.Nfo != "" {
		nfoPath = f.download(ctx, payload.Data.Nfo, filepath.Join(f.StorageDir, base+".nfo"))
	}
	if payload.Data.NfoImg != "" {
		imgPath = f.download(ctx, payload.Data.NfoImg, filepath.Join(f.StorageDir, base+".png"))
	}
	return nfoPath, imgPath
}

// lookup queries the artifact endpoint with the same bounded retries the
// source adapters use.
func (f *NfoFetcher) lookup(ctx context.Context, releaseName string) (*nfoResponse, error) {
	params := url.Values{}
	params.Set("type", "nfo")
	params.Set("release", releaseName)

	var payload nfoResponse
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.URL.RawQuery = params.Encode()
			req.Header.Set("User-Agent", f.UserAgent)
			req.Header.Set("Accept", "application/json")

			resp, err := f.HTTPClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to execute request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("nfo request failed: status %d", resp.StatusCode)
			}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("failed to decode json response: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// download fetches one artifact URL to dest, returning dest on success and
// "" on any failure.
func (f *NfoFetcher) download(ctx context.Context, srcURL, dest string) string {
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", f.UserAgent)

			resp, err := f.HTTPClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to execute request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("artifact request failed: status %d", resp.StatusCode)
			}

			out, err := os.Create(dest)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			defer out.Close()

			if _, err := io.Copy(out, resp.Body); err != nil {
				os.Remove(dest)
				return fmt.Errorf("failed to write artifact: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		f.log.Debugw("artifact download failed", zap.String("url", srcURL), zap.Error(err))
		return ""
	}
	return dest
}

// safeFilename keeps letters, digits, underscores and dashes.
func safeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("release-%d", time.Now().Unix())
	}
	return b.String()
}
