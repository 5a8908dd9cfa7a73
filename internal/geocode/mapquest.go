package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
)

// MapQuest talks to a MapQuest-compatible /geocoding/v1/address endpoint.
// Outbound calls share one token bucket.
type MapQuest struct {
	hc      *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

func NewMapQuest(baseURL, apiKey string, reqPerSec float64) *MapQuest {
	return &MapQuest{
		hc:      &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(reqPerSec), 1),
	}
}

type mqResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mqLocation `json:"locations"`
	} `json:"results"`
}

type mqLocation struct {
	Street     string `json:"street"`
	City       string `json:"adminArea5"`
	State      string `json:"adminArea3"`
	Country    string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func (m *MapQuest) Geocode(ctx context.Context, address string) (Result, error) {
	if strings.TrimSpace(address) == "" {
		return Result{}, domain.ErrNoLocation
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return Result{}, domain.Upstream(err, "geocoder rate limit")
	}

	q := url.Values{}
	q.Set("key", m.apiKey)
	q.Set("location", address)
	q.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := m.hc.Do(req)
	if err != nil {
		return Result{}, domain.Upstream(err, "geocoder")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, domain.Upstream(fmt.Errorf("unexpected status %d", resp.StatusCode), "geocoder")
	}

	var body mqResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, domain.Upstream(fmt.Errorf("decode response: %w", err), "geocoder")
	}
	if body.Info.StatusCode != 0 {
		return Result{}, domain.Upstream(
			fmt.Errorf("status %d: %s", body.Info.StatusCode, strings.Join(body.Info.Messages, "; ")), "geocoder")
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return Result{}, domain.ErrNoLocation
	}

	loc := body.Results[0].Locations[0]
	return Result{
		Latitude:         loc.LatLng.Lat,
		Longitude:        loc.LatLng.Lng,
		FormattedAddress: formatAddress(loc),
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.PostalCode,
		Country:          loc.Country,
	}, nil
}

func formatAddress(l mqLocation) string {
	var parts []string
	for _, p := range []string{l.Street, l.City, strings.TrimSpace(l.State + " " + l.PostalCode), l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
