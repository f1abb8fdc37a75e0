package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb/geojson"

	"github.com/gwl-atlas/county-climate-tiles/services/seeder/internal/models"
	"github.com/gwl-atlas/county-climate-tiles/services/tiles/mvt"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema creates the tables, the (county_id, gwl) uniqueness constraint
// and the spatial index if they do not exist yet.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}

const insertCountySQL = `INSERT INTO counties (name, state_name, state_abbr, fips, geom)
VALUES ($1, $2, $3, $4, ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON($5), 4326)))
ON CONFLICT (fips) DO UPDATE
SET name = EXCLUDED.name,
    state_name = EXCLUDED.state_name,
    state_abbr = EXCLUDED.state_abbr,
    geom = EXCLUDED.geom
RETURNING id, fips`

// UpsertCounties writes county rows and returns the FIPS to id mapping.
func UpsertCounties(ctx context.Context, pool *pgxpool.Pool, counties []models.CountyRow) (map[string]int64, error) {
	fipsToID := make(map[string]int64, len(counties))
	if len(counties) == 0 {
		return fipsToID, nil
	}

	batch := &pgx.Batch{}
	for _, county := range counties {
		geomJSON, err := json.Marshal(geojson.NewGeometry(county.Geometry))
		if err != nil {
			return nil, fmt.Errorf("encode county %s geometry: %w", county.FIPS, err)
		}
		batch.Queue(insertCountySQL, county.Name, county.StateName, county.StateAbbr, county.FIPS, string(geomJSON))
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range counties {
		var id int64
		var fips string
		if err := res.QueryRow().Scan(&id, &fips); err != nil {
			return nil, err
		}
		fipsToID[fips] = id
	}

	return fipsToID, nil
}

// upsertMetricsSQL is built once from the indicator column list so the
// seeder and the tile store cannot drift apart.
var upsertMetricsSQL = func() string {
	cols := strings.Join(mvt.MetricNames, ", ")

	placeholders := make([]string, len(mvt.MetricNames))
	updates := make([]string, len(mvt.MetricNames))
	for i, name := range mvt.MetricNames {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		updates[i] = fmt.Sprintf("%s = EXCLUDED.%s", name, name)
	}

	return fmt.Sprintf(`INSERT INTO climate_variables (county_id, gwl, %s)
VALUES ($1, $2, %s)
ON CONFLICT (county_id, gwl) DO UPDATE
SET %s`, cols, strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}()

// UpsertMetrics writes one metric row per (county, gwl) pair. Re-seeding
// replaces existing rows rather than failing the uniqueness constraint.
func UpsertMetrics(ctx context.Context, pool *pgxpool.Pool, rows []models.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		args := make([]any, 0, len(mvt.MetricNames)+2)
		args = append(args, row.CountyID, row.GWL)
		for _, v := range row.Values {
			args = append(args, v)
		}
		batch.Queue(upsertMetricsSQL, args...)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}
