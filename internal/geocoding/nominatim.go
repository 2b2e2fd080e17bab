// Package geocoding resolves a place name or coordinate pair to a position.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

const userAgent = "TideTerminal/1.0" // Required by Nominatim ToS

// ErrNoResults is returned when the geocoder finds no match
var ErrNoResults = errors.New("no geocoding results")

// Geocoder converts place names to coordinates with the Nominatim search API
type Geocoder struct {
	baseURL      string
	countryCodes string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// Location represents a geocoded location
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// NewGeocoder creates a geocoder for the Nominatim search endpoint at baseURL.
// Results are restricted to countryCodes (comma separated, e.g. "jp") when set.
func NewGeocoder(baseURL, countryCodes string) *Geocoder {
	return &Geocoder{
		baseURL:      baseURL,
		countryCodes: countryCodes,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// Nominatim allows 1 req/sec max
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// nominatimResponse represents the Nominatim API response
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode converts a query to coordinates. A "lat,lon" pair, in decimal
// degrees or D°M' notation, is returned without a network call.
func (g *Geocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	if loc, ok := parsePair(query); ok {
		return loc, nil
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("q", query)
	if g.countryCodes != "" {
		params.Add("countrycodes", g.countryCodes)
	}
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%q: %w", query, ErrNoResults)
	}

	result := results[0]
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}

	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      result.DisplayName,
	}, nil
}

// parsePair reads "lat,lon" in decimal degrees or D°M' notation
func parsePair(query string) (*Location, bool) {
	parts := strings.Split(query, ",")
	if len(parts) != 2 {
		return nil, false
	}
	lat, ok := parseDegrees(parts[0])
	if !ok || lat < -90 || lat > 90 {
		return nil, false
	}
	lon, ok := parseDegrees(parts[1])
	if !ok || lon < -180 || lon > 180 {
		return nil, false
	}
	return &Location{Latitude: lat, Longitude: lon, Name: strings.TrimSpace(query)}, true
}

func parseDegrees(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	v, err := models.ParseCoordinate(s)
	return v, err == nil
}
