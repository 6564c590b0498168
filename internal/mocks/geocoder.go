package mocks

import (
	"context"

	"tourbook/pkg/maps"
)

// Geocoder resolves addresses from a fixed table.
type Geocoder struct {
	Results map[string]*maps.GeocodeResult
	Err     error
	Calls   int
}

var _ maps.Geocoder = (*Geocoder)(nil)

func (m *Geocoder) Geocode(ctx context.Context, address string) (*maps.GeocodeResult, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Results[address]; ok {
		return r, nil
	}
	return nil, maps.ErrNoResults
}

func (m *Geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*maps.GeocodeResult, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.Results {
		if r.Latitude == lat && r.Longitude == lng {
			return r, nil
		}
	}
	return nil, maps.ErrNoResults
}
