package hospitals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidCoordinates rejects latitudes/longitudes outside the valid range.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Hospital is one row of the seeded lookup table.
type Hospital struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKM float64 `json:"distance_km"`
}

// Repository reads the seeded hospitals table. It runs on database/sql with
// the pq driver; the table is reference data and never written by the app.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Nearby returns up to limit hospitals ordered by great-circle distance from
// the given point.
func (r *Repository) Nearby(ctx context.Context, lat, lon float64, limit int) ([]Hospital, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name, address, lat, lon FROM hospitals`)
	if err != nil {
		return nil, fmt.Errorf("hospitals: query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Hospital
	for rows.Next() {
		var h Hospital
		if err := rows.Scan(&h.Name, &h.Address, &h.Lat, &h.Lon); err != nil {
			return nil, fmt.Errorf("hospitals: scan failed: %w", err)
		}
		h.DistanceKM = math.Round(haversineKM(lat, lon, h.Lat, h.Lon)*10) / 10
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hospitals: iterate failed: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKM < out[j].DistanceKM })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

const earthRadiusKM = 6371.0

// haversineKM computes the great-circle distance between two points.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
