package transport

// PrimaryKeyColumn is force-included in every projection so clients can
// always correlate rows and replay cursors.
const PrimaryKeyColumn = "church_id"

// Coordinate column names, force-included internally for GeoJSON output.
const (
	LatitudeColumn  = "latitude"
	LongitudeColumn = "longitude"
)

// knownColumns is the projection whitelist. Requests may only select from
// this set; anything else in the fields parameter is dropped.
var knownColumns = map[string]struct{}{
	"church_id":          {},
	"gers_id":            {},
	"name":               {},
	"latitude":           {},
	"longitude":          {},
	"address":            {},
	"locality":           {},
	"region":             {},
	"postal_code":        {},
	"country":            {},
	"website":            {},
	"pipeline_status":    {},
	"belief_type":        {},
	"trinitarian_beliefs": {},
	"church_beliefs_url": {},
	"services_info":      {},
	"service_languages":  {},
	"ministry_names":     {},
	"best_phone":         {},
	"best_email":         {},
	"instagram_url":      {},
	"youtube_url":        {},
}

// AllColumns returns the full whitelist in stable order, used by the single
// record lookup which projects every column.
func AllColumns() []string {
	return []string{
		"church_id", "gers_id", "name", "latitude", "longitude", "address",
		"locality", "region", "postal_code", "country", "website",
		"pipeline_status", "belief_type", "trinitarian_beliefs",
		"church_beliefs_url", "services_info", "service_languages",
		"ministry_names", "best_phone", "best_email", "instagram_url",
		"youtube_url",
	}
}

// IsKnownColumn reports whether name is a projectable column.
func IsKnownColumn(name string) bool {
	_, ok := knownColumns[name]
	return ok
}

// defaultFieldSet is the lean projection used when no usable fields
// parameter was given.
func defaultFieldSet() []string {
	return []string{
		"church_id",
		"name",
		"latitude",
		"longitude",
		"address",
		"locality",
		"region",
		"country",
		"website",
	}
}
