package transport

import "encoding/json"

// Row is a projected church record; keys are whitelisted column names.
type Row map[string]interface{}

// SearchResponse is the JSON body for format=json search responses.
type SearchResponse struct {
	Items      []Row   `json:"items"`
	Limit      int     `json:"limit"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// ResultPage is the service-level page handed to the handler. Items carry
// the projected rows; Features is populated instead when GeoJSON output was
// requested.
type ResultPage struct {
	Items      []Row
	Features   *FeatureCollection
	Limit      int
	HasMore    bool
	NextCursor *string
}

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature with a Point (or null) geometry. Geometry is
// pre-encoded so a missing coordinate pair can be represented as an explicit
// JSON null.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties Row             `json:"properties"`
}

// NewFeatureCollection creates an empty FeatureCollection.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}
