// Package geo provides a simple, deterministic, concurrency-safe in-memory
// proximity index over persisted restrooms. It is intentionally small and
// dependency-free, but engineered with production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - Clear, documented types and functional options (Option pattern)
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic ordering (stable order for equidistant entries)
//   - Sensible defaults (result caps, optional radius filter)
//
// Distance is great-circle distance computed with the haversine formula on
// a spherical Earth, which is accurate to well under 0.5%, more than
// enough to rank restrooms by walking distance.
package geo

import (
	"math"
	"sort"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0088

// Result is a restroom paired with its distance from the query point.
type Result struct {
	Restroom domain.Restroom
	// DistanceKm is the great-circle distance from the query point.
	DistanceKm float64
}

// Index is the minimal interface implemented by all proximity indices.
type Index interface {
	Nearest(lat, lng float64, k int) []Result
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	maxResults  int
	maxRadiusKm float64
}

func defaultConfig() config {
	return config{
		maxResults:  50,
		maxRadiusKm: 0, // unlimited
	}
}

// WithMaxResults caps the number of results returned by a single Nearest
// call regardless of the requested k. Values <= 0 are ignored.
func WithMaxResults(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithMaxRadiusKm drops entries farther than r kilometers from the query
// point. Values <= 0 mean no radius filter.
func WithMaxRadiusKm(r float64) Option {
	return func(c *config) {
		if r > 0 {
			c.maxRadiusKm = r
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type index struct {
	cfg     config
	entries []domain.Restroom
}

// NewIndex builds an immutable proximity index from the given restrooms.
// The slice is copied; later mutations by the caller do not affect the
// index.
func NewIndex(restrooms []domain.Restroom, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	entries := make([]domain.Restroom, len(restrooms))
	copy(entries, restrooms)
	return &index{cfg: cfg, entries: entries}
}

// Nearest returns up to k restrooms ordered by ascending distance from
// (lat, lng). Ties are broken by restroom ID so the order is stable.
func (i *index) Nearest(lat, lng float64, k int) []Result {
	if len(i.entries) == 0 {
		return nil
	}
	if k <= 0 {
		k = 10
	}
	if i.cfg.maxResults > 0 && k > i.cfg.maxResults {
		k = i.cfg.maxResults
	}

	buf := make([]Result, 0, len(i.entries))
	for _, r := range i.entries {
		d := haversineKm(lat, lng, r.Latitude, r.Longitude)
		if i.cfg.maxRadiusKm > 0 && d > i.cfg.maxRadiusKm {
			continue
		}
		buf = append(buf, Result{Restroom: r, DistanceKm: d})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].DistanceKm != buf[b].DistanceKm {
			return buf[a].DistanceKm < buf[b].DistanceKm
		}
		return buf[a].Restroom.ID < buf[b].Restroom.ID
	})

	if k > len(buf) {
		k = len(buf)
	}
	return buf[:k:k]
}

// haversineKm returns the great-circle distance in kilometers between two
// coordinate pairs given in degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lng2 - lng1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
