// Normalization of raw provider records into Restroom candidates.
//
// The mapping is deliberately lossy-preserving: optional fields that the
// provider omits stay nil on the candidate so downstream code can tell
// "unknown" apart from "explicitly false/empty". Only the coordinate pair
// is mandatory: a restroom without coordinates cannot be deduplicated or
// placed on a map, so such records are rejected with ErrMalformedRecord
// and must be dropped by the caller, never stored.
package refuge

import (
	"encoding/json"
	"errors"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

// ErrMalformedRecord is returned when a raw record is missing a numeric
// latitude or longitude.
var ErrMalformedRecord = errors.New("record has no usable coordinates")

// Normalize converts one raw provider record into a Restroom candidate.
// Field mapping: name, directions, notes (provider "comment"), city,
// state, country, latitude, longitude, unisex, accessible, changing_table,
// approved. The candidate carries no ID; the repository assigns one when
// the ingestion pipeline decides to persist it.
func Normalize(rec Record) (*domain.Restroom, error) {
	lat, ok := toFloat(rec["latitude"])
	if !ok {
		return nil, ErrMalformedRecord
	}
	lng, ok := toFloat(rec["longitude"])
	if !ok {
		return nil, ErrMalformedRecord
	}

	return &domain.Restroom{
		Latitude:      lat,
		Longitude:     lng,
		Name:          toStringPtr(rec["name"]),
		Directions:    toStringPtr(rec["directions"]),
		Notes:         toStringPtr(rec["comment"]),
		City:          toStringPtr(rec["city"]),
		State:         toStringPtr(rec["state"]),
		Country:       toStringPtr(rec["country"]),
		Unisex:        toBoolPtr(rec["unisex"]),
		Accessible:    toBoolPtr(rec["accessible"]),
		ChangingTable: toBoolPtr(rec["changing_table"]),
		Approved:      toBoolPtr(rec["approved"]),
	}, nil
}

// toFloat accepts the numeric shapes a decoded JSON record can carry.
// Strings are non-numeric by contract, even when parseable.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toStringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func toBoolPtr(v any) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}
