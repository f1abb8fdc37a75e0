package mvt

import (
	"testing"

	"github.com/paulmach/orb"
	encmvt "github.com/paulmach/orb/encoding/mvt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// midwestPolygon is a rough 10x5 degree box over Iowa/Nebraska.
func midwestPolygon() orb.Polygon {
	return orb.Polygon{{
		{-100, 40}, {-90, 40}, {-90, 45}, {-100, 45}, {-100, 40},
	}}
}

func testRegion(id int64) Region {
	tavg := 12.5
	metrics := make([]*float64, len(MetricNames))
	metrics[3] = &tavg // tavg
	return Region{
		ID:       id,
		Name:     "Story",
		State:    "IA",
		FIPS:     "19169",
		GWL:      2.0,
		Geometry: midwestPolygon(),
		Metrics:  metrics,
	}
}

func TestEncodeTile_NoRegions(t *testing.T) {
	data, err := EncodeTile(0, 0, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestEncodeTile_RoundTrip(t *testing.T) {
	data, err := EncodeTile(0, 0, 0, []Region{testRegion(7)})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	layers, err := encmvt.Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, layers, 1)

	layer := layers[0]
	assert.Equal(t, LayerName, layer.Name)
	assert.EqualValues(t, 4096, layer.Extent)
	require.Len(t, layer.Features, 1)

	props := layer.Features[0].Properties
	assert.Equal(t, "Story", props["name"])
	assert.Equal(t, "IA", props["state"])
	assert.Equal(t, "19169", props["fips"])
	assert.Equal(t, 2.0, props["gwl"])
	assert.Equal(t, 12.5, props["tavg"])

	// nil metrics are omitted, not encoded as zero
	_, ok := props["prmax1day"]
	assert.False(t, ok)
}

func TestEncodeTile_Deterministic(t *testing.T) {
	first, err := EncodeTile(4, 3, 5, []Region{testRegion(1), testRegion(2)})
	require.NoError(t, err)

	second, err := EncodeTile(4, 3, 5, []Region{testRegion(1), testRegion(2)})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncodeTile_DoesNotMutateInput(t *testing.T) {
	regions := []Region{testRegion(1), testRegion(2)}

	first, err := EncodeTile(4, 3, 5, regions)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// The caller's geometry must still be in geographic coordinates, so a
	// second encode of the very same slice yields the same bytes.
	assert.Equal(t, midwestPolygon(), regions[0].Geometry)

	second, err := EncodeTile(4, 3, 5, regions)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeTile_RegionOutsideTile(t *testing.T) {
	// Tile (2,3,1) covers the eastern hemisphere; the region is over Iowa.
	data, err := EncodeTile(2, 3, 1, []Region{testRegion(1)})
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestValidCoord(t *testing.T) {
	tests := []struct {
		name    string
		z, x, y int
		want    bool
	}{
		{"origin", 0, 0, 0, true},
		{"max zoom", 22, 0, 0, true},
		{"mid pyramid", 3, 7, 7, true},
		{"zoom too deep", 23, 0, 0, false},
		{"negative zoom", -1, 0, 0, false},
		{"x at bound", 3, 8, 0, false},
		{"y at bound", 3, 0, 8, false},
		{"negative x", 3, -1, 0, false},
		{"negative y", 3, 0, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoord(tt.z, tt.x, tt.y))
		})
	}
}

func TestEnvelope(t *testing.T) {
	world := Envelope(0, 0, 0)
	assert.Less(t, world.Min.Lon(), -179.0)
	assert.Greater(t, world.Max.Lon(), 179.0)

	// Northwest quadrant tile plus the clip buffer.
	nw := Envelope(1, 0, 0)
	assert.Less(t, nw.Min.Lon(), -179.0)
	assert.Greater(t, nw.Max.Lon(), 0.0)
	assert.Less(t, nw.Max.Lon(), 15.0)
	assert.Greater(t, nw.Max.Lat(), 80.0)

	// Deterministic.
	assert.Equal(t, Envelope(5, 7, 11), Envelope(5, 7, 11))
}
