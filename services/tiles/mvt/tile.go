package mvt

import (
	"github.com/paulmach/orb"
	encmvt "github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/simplify"
)

const (
	// LayerName is the single logical layer carried by every tile.
	LayerName = "climate"

	// MinZoom and MaxZoom bound the tile pyramid served by the host.
	MinZoom = 0
	MaxZoom = 22

	// DefaultGWL is the scenario joined when the request carries no selector.
	DefaultGWL = 2.0

	// tileBuffer pads the queried envelope by 8/256 of a tile side so
	// geometries clipped with a buffer render without seams at tile edges.
	tileBuffer = 8.0 / 256.0
)

// MetricNames lists the climate indicator columns in the order the store
// selects them. Region.Metrics is parallel to this slice.
var MetricNames = []string{
	"pr_above_nonzero_99th",
	"prmax1day",
	"prmax5yr",
	"tavg",
	"tmax1day",
	"tmax_days_ge_100f",
	"tmax_days_ge_105f",
	"tmax_days_ge_95f",
	"tmean_jja",
	"tmin_days_ge_70f",
	"tmin_days_le_0f",
	"tmin_days_le_32f",
	"tmin_jja",
	"pr_annual",
	"pr_days_above_nonzero_99th",
}

// Region is one county joined with its metric row for a single GWL scenario.
type Region struct {
	ID       int64
	Name     string
	State    string
	FIPS     string
	GWL      float64
	Geometry orb.Geometry
	Metrics  []*float64 // parallel to MetricNames; nil entries are omitted
}

// ValidCoord reports whether (z, x, y) addresses a tile inside the pyramid.
func ValidCoord(z, x, y int) bool {
	if z < MinZoom || z > MaxZoom {
		return false
	}
	max := 1 << uint(z)
	return x >= 0 && x < max && y >= 0 && y < max
}

// Envelope returns the geographic bounding box queried for a tile,
// padded by the clip buffer. Pure function of the coordinate.
func Envelope(z, x, y int) orb.Bound {
	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)).Bound(tileBuffer)
}

// EncodeTile encodes the regions intersecting a tile into a binary vector
// tile with one "climate" layer at the standard 4096 extent. Geometries are
// projected into tile coordinates, clipped to the buffered extent and
// simplified; regions whose clipped geometry is empty are dropped. A tile
// with no surviving features encodes to a zero-length payload.
//
// Output is deterministic for a given input: region order is preserved and
// the encoder writes property keys in sorted order.
func EncodeTile(z, x, y int, regions []Region) ([]byte, error) {
	if len(regions) == 0 {
		return nil, nil
	}

	fc := geojson.NewFeatureCollection()
	for _, r := range regions {
		// The projection below rewrites coordinates in place, so encode a
		// clone and leave the caller's geometry in geographic space.
		f := geojson.NewFeature(orb.Clone(r.Geometry))
		f.ID = float64(r.ID)
		f.Properties["id"] = float64(r.ID)
		f.Properties["name"] = r.Name
		f.Properties["state"] = r.State
		f.Properties["fips"] = r.FIPS
		f.Properties["gwl"] = r.GWL
		for i, name := range MetricNames {
			if i < len(r.Metrics) && r.Metrics[i] != nil {
				f.Properties[name] = *r.Metrics[i]
			}
		}
		fc.Append(f)
	}

	layers := encmvt.NewLayers(map[string]*geojson.FeatureCollection{LayerName: fc})
	layers.ProjectToTile(maptile.New(uint32(x), uint32(y), maptile.Zoom(z)))
	layers.Clip(encmvt.MapboxGLDefaultExtentBound)
	layers.Simplify(simplify.DouglasPeucker(1.0))
	layers.RemoveEmpty(1.0, 1.0)

	empty := true
	for _, layer := range layers {
		if len(layer.Features) > 0 {
			empty = false
		}
	}
	if empty {
		return nil, nil
	}

	return encmvt.Marshal(layers)
}
