// Package source retrieves raw yearly tide-table text for a station.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when no table exists for the station and year
var ErrNotFound = errors.New("tide table not found")

// maxTableSize bounds one yearly table (366 lines of 137 bytes is ~50 KB)
const maxTableSize = 1 << 20

// Source supplies the raw tide-table text for a station and year
type Source interface {
	Fetch(ctx context.Context, stationID string, year int) (string, error)
}

// tablePath returns the relative path of a table: <year>/<station>.txt
func tablePath(stationID string, year int) string {
	return filepath.Join(strconv.Itoa(year), stationID+".txt")
}

// Dir reads tables from a local directory tree
type Dir struct {
	Root string
}

// NewDir creates a Source rooted at root
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Fetch reads <root>/<year>/<station>.txt
func (d *Dir) Fetch(ctx context.Context, stationID string, year int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validID(stationID); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(d.Root, tablePath(stationID, year)))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("station %s year %d: %w", stationID, year, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading tide table: %w", err)
	}
	return string(data), nil
}

// Client fetches tables over HTTP from <baseURL>/<year>/<station>.txt
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an HTTP table client allowing perSecond requests per second
func NewClient(baseURL string, timeout time.Duration, perSecond float64) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Fetch retrieves the table text for the station and year
func (c *Client) Fetch(ctx context.Context, stationID string, year int) (string, error) {
	if err := validID(stationID); err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	requestURL := fmt.Sprintf("%s/%d/%s.txt", c.baseURL, year, stationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tide table: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("station %s year %d: %w", stationID, year, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("table server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTableSize))
	if err != nil {
		return "", fmt.Errorf("failed to read tide table: %w", err)
	}
	return string(body), nil
}

// validID rejects IDs that would escape the table directory
func validID(stationID string) error {
	if stationID == "" || stationID != filepath.Base(stationID) || stationID == ".." || stationID == "." {
		return fmt.Errorf("invalid station ID %q", stationID)
	}
	return nil
}
