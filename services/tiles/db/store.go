package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/gwl-atlas/county-climate-tiles/services/tiles/mvt"
)

// Store wraps read access to the county geometry and climate metric tables.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// regionsSQL selects counties intersecting an envelope, inner-joined to
// their climate metric row for one GWL. The && bbox filter hits the GIST
// index before the exact ST_Intersects test. Counties with no metric row
// for the requested scenario are absent from the result, which callers
// treat as "no data", never as an error. ORDER BY keeps tile encoding
// deterministic.
var regionsSQL = fmt.Sprintf(`
    SELECT c.id, c.name, c.state_abbr, c.fips, ST_AsGeoJSON(c.geom),
           v.gwl::float8, %s
    FROM counties c
    JOIN climate_variables v ON v.county_id = c.id AND v.gwl = $5
    WHERE c.geom && ST_MakeEnvelope($1, $2, $3, $4, 4326)
      AND ST_Intersects(c.geom, ST_MakeEnvelope($1, $2, $3, $4, 4326))
    ORDER BY c.id
`, "v."+strings.Join(mvt.MetricNames, ", v."))

// RegionsIntersecting returns every county whose geometry intersects the
// envelope, joined with its metric row for the given GWL scenario.
func (s *Store) RegionsIntersecting(ctx context.Context, bound orb.Bound, gwl float64) ([]mvt.Region, error) {
	rows, err := s.pool.Query(ctx, regionsSQL,
		bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat(), gwl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regions := make([]mvt.Region, 0)
	for rows.Next() {
		var (
			r        mvt.Region
			geomJSON []byte
		)
		r.Metrics = make([]*float64, len(mvt.MetricNames))

		dest := []any{&r.ID, &r.Name, &r.State, &r.FIPS, &geomJSON, &r.GWL}
		for i := range r.Metrics {
			dest = append(dest, &r.Metrics[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		geom, err := geojson.UnmarshalGeometry(geomJSON)
		if err != nil {
			return nil, fmt.Errorf("decode county %d geometry: %w", r.ID, err)
		}
		r.Geometry = geom.Geometry()

		regions = append(regions, r)
	}
	return regions, rows.Err()
}
