// Package geocode resolves free-form addresses and postal codes to
// coordinates.
package geocode

import (
	"context"
	"strings"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
)

type Result struct {
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

func (r Result) Location() domain.Location {
	return domain.Location{
		Type:             "Point",
		Coordinates:      [2]float64{r.Longitude, r.Latitude},
		FormattedAddress: r.FormattedAddress,
		City:             r.City,
		State:            r.State,
		Zipcode:          r.Zipcode,
		Country:          r.Country,
	}
}

// Geocoder returns domain.ErrNoLocation when nothing matches and an
// upstream-marked error when the service itself fails.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Result, error)
}

func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
