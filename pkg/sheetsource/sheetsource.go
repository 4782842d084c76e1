// Package sheetsource downloads roster tables from shareable Google Sheets
// links by rewriting them to their CSV export form.
package sheetsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidSheetURL is returned when a link does not carry a
	// recognizable spreadsheet document id.
	ErrInvalidSheetURL = errors.New("unrecognized spreadsheet link")

	// ErrFetchFailed is returned when the export could not be downloaded
	// after all retries.
	ErrFetchFailed = errors.New("sheet download failed")
)

var (
	sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
	gidPattern     = regexp.MustCompile(`[#&?]gid=([0-9]+)`)
)

// ExportURL converts a shareable spreadsheet link into its CSV export form,
// preserving the tab (gid) when the link names one. Tab 0 is assumed
// otherwise.
func ExportURL(shareURL string) (string, error) {
	if strings.TrimSpace(shareURL) == "" {
		return "", ErrInvalidSheetURL
	}
	m := sheetIDPattern.FindStringSubmatch(shareURL)
	if m == nil {
		return "", fmt.Errorf("%w: missing document id", ErrInvalidSheetURL)
	}

	gid := "0"
	if gm := gidPattern.FindStringSubmatch(shareURL); gm != nil {
		gid = gm[1]
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", m[1], gid), nil
}

// Client fetches CSV exports over HTTP with retry.
type Client struct {
	http        *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// NewClient creates a Client with the given per-request timeout and retry
// budget. Retries back off exponentially: 1s, 2s, 4s, ...
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		http:        &http.Client{Timeout: timeout},
		maxRetries:  maxRetries,
		backoffBase: time.Second,
	}
}

// FetchCSV downloads the CSV export for a shareable link. Transient
// failures are retried with exponential backoff; a context cancellation
// stops the wait immediately.
func (c *Client) FetchCSV(ctx context.Context, shareURL string) ([]byte, error) {
	exportURL, err := ExportURL(shareURL)
	if err != nil {
		return nil, err
	}

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		data, err := c.fetchOnce(ctx, exportURL)
		if err == nil {
			log.Info().Int("bytes", len(data)).Msg("roster sheet downloaded")
			return data, nil
		}
		lastErr = err

		backoff := c.backoffBase << attempt
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Dur("next_retry_in", backoff).
			Msg("sheet fetch failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrFetchFailed, attempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
