package atlas

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/gwl-atlas/county-climate-tiles/services/seeder/internal/models"
	"github.com/gwl-atlas/county-climate-tiles/services/tiles/mvt"
)

// ParseCollection decodes one NCA Atlas GeoJSON export.
func ParseCollection(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return fc, nil
}

// CountyRows extracts county identity, display fields and geometry.
// Every atlas export carries the same counties, so callers only need the
// first file's rows.
func CountyRows(fc *geojson.FeatureCollection) ([]models.CountyRow, error) {
	rows := make([]models.CountyRow, 0, len(fc.Features))
	for _, f := range fc.Features {
		fips := f.Properties.MustString("FIPS", "")
		if fips == "" {
			return nil, fmt.Errorf("feature %q has no FIPS code", f.Properties.MustString("NAME", "?"))
		}
		rows = append(rows, models.CountyRow{
			Name:      f.Properties.MustString("NAME", ""),
			StateName: f.Properties.MustString("STATE_NAME", ""),
			StateAbbr: f.Properties.MustString("STATE_ABBR", ""),
			FIPS:      fips,
			Geometry:  f.Geometry,
		})
	}
	return rows, nil
}

// MetricCandidates extracts the per-county indicator values for one GWL.
// The atlas exports suffix each indicator property with the warming level,
// e.g. "tavg_GWL2". Missing properties stay nil and seed as NULL.
func MetricCandidates(fc *geojson.FeatureCollection, gwl float64) []models.MetricCandidate {
	suffix := fmt.Sprintf("_GWL%d", int(gwl))

	candidates := make([]models.MetricCandidate, 0, len(fc.Features))
	for _, f := range fc.Features {
		fips := f.Properties.MustString("FIPS", "")
		if fips == "" {
			continue
		}

		values := make([]*float64, len(mvt.MetricNames))
		for i, name := range mvt.MetricNames {
			if raw, ok := f.Properties[name+suffix]; ok {
				if v, ok := raw.(float64); ok {
					values[i] = &v
				}
			}
		}

		candidates = append(candidates, models.MetricCandidate{
			FIPS:   fips,
			GWL:    gwl,
			Values: values,
		})
	}
	return candidates
}

// Resolve maps candidates to county ids, dropping candidates whose FIPS is
// unknown. The dropped count is returned for logging.
func Resolve(candidates []models.MetricCandidate, fipsToID map[string]int64) ([]models.MetricRow, int) {
	rows := make([]models.MetricRow, 0, len(candidates))
	dropped := 0
	for _, cand := range candidates {
		id, ok := fipsToID[cand.FIPS]
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, models.MetricRow{
			CountyID: id,
			GWL:      cand.GWL,
			Values:   cand.Values,
		})
	}
	return rows, dropped
}
