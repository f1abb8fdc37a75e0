package models

import "github.com/paulmach/orb"

// CountyRow captures one county ready for insertion.
type CountyRow struct {
	Name      string
	StateName string
	StateAbbr string
	FIPS      string
	Geometry  orb.Geometry
}

// MetricCandidate holds one county's indicator values for a single GWL,
// keyed by FIPS until the county ids are known.
type MetricCandidate struct {
	FIPS   string
	GWL    float64
	Values []*float64 // parallel to mvt.MetricNames; nil when absent
}

// MetricRow is a MetricCandidate resolved to a county id.
type MetricRow struct {
	CountyID int64
	GWL      float64
	Values   []*float64
}
