package models

// ReferenceValues represents the distinct values of one reference column.
type ReferenceValues struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// Enums lists the reference columns and the fixed enumerations used by the
// API.
type Enums struct {
	ReferenceColumns []string `json:"referenceColumns"`
	TrafficDensities []string `json:"trafficDensities"`
	PartsOfDay       []string `json:"partsOfDay"`
	DelayLabels      []string `json:"delayLabels"`
}
