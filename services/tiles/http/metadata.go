package http

import "github.com/gwl-atlas/county-climate-tiles/services/tiles/mvt"

// Metadata is the static tile-service descriptor served to map clients:
// layer name, zoom bounds and per-field types.
type Metadata struct {
	Layer   string            `json:"layer"`
	MinZoom int               `json:"minzoom"`
	MaxZoom int               `json:"maxzoom"`
	Fields  map[string]string `json:"fields"`
}

func buildMetadata() Metadata {
	fields := map[string]string{
		"id":    "Number",
		"name":  "String",
		"state": "String",
		"fips":  "String",
		"gwl":   "Number",
	}
	for _, name := range mvt.MetricNames {
		fields[name] = "Number"
	}

	return Metadata{
		Layer:   mvt.LayerName,
		MinZoom: mvt.MinZoom,
		MaxZoom: mvt.MaxZoom,
		Fields:  fields,
	}
}
