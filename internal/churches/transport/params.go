package transport

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/global-church/church-search-api/internal/churches/cursor"
)

const (
	// DefaultLimit applies when the limit parameter is absent or unparsable.
	DefaultLimit = 20
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Format selects the response body shape.
type Format string

const (
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
)

// SearchParams is the typed, validated form of the search query string.
// Pointer fields are nil when the parameter was absent or unparsable.
type SearchParams struct {
	Query       *string
	Country     *string
	Belief      *string
	Region      *string
	Locality    *string
	PostalCode  *string
	Trinitarian *bool
	Languages   []string
	Programs    []string

	// Singular legacy filters, applied client-side after the backend query.
	LegacyLanguage *string
	LegacyProgram  *string

	EqualsID *string

	MinLat *float64
	MaxLat *float64
	MinLng *float64
	MaxLng *float64

	CenterLat *float64
	CenterLng *float64
	RadiusKM  *float64

	ForGlobe bool

	Fields []string
	Format Format
	Limit  int
	Cursor *cursor.Cursor
}

// ParseSearchParams turns raw query string values into a SearchParams.
// Parsing is permissive for filters (garbage is treated as absent) but strict
// for the cursor, which must decode cleanly or the request fails with 400.
func ParseSearchParams(values url.Values) (*SearchParams, error) {
	p := &SearchParams{
		Query:       optString(values, "q"),
		Country:     optString(values, "country"),
		Belief:      optString(values, "belief"),
		Region:      optString(values, "region"),
		Locality:    optString(values, "locality"),
		PostalCode:  optString(values, "postal_code"),
		Trinitarian: optBool(values, "trinitarian"),
		Languages:   optList(values, "languages"),
		Programs:    optList(values, "programs"),

		LegacyLanguage: optString(values, "language"),
		LegacyProgram:  optString(values, "program"),

		EqualsID: optString(values, "id"),

		MinLat: optFloat(values, "min_lat"),
		MaxLat: optFloat(values, "max_lat"),
		MinLng: optFloat(values, "min_lng"),
		MaxLng: optFloat(values, "max_lng"),

		CenterLat: optFloat(values, "center_lat"),
		CenterLng: optFloat(values, "center_lng"),
		RadiusKM:  optFloat(values, "radius_km"),
	}

	if fg := optBool(values, "for_globe"); fg != nil && *fg {
		p.ForGlobe = true
	}

	p.Format = FormatJSON
	if strings.EqualFold(strings.TrimSpace(values.Get("format")), string(FormatGeoJSON)) {
		p.Format = FormatGeoJSON
	}

	p.Limit = parseLimit(values.Get("limit"))
	p.Fields = parseFields(values.Get("fields"))

	if token := strings.TrimSpace(values.Get("cursor")); token != "" {
		c, err := cursor.Decode(token)
		if err != nil {
			return nil, err
		}
		p.Cursor = &c
	}

	return p, nil
}

// HasBBox reports whether all four bounding box parameters are present.
func (p *SearchParams) HasBBox() bool {
	return p.MinLat != nil && p.MaxLat != nil && p.MinLng != nil && p.MaxLng != nil
}

// HasRadius reports whether all three radius parameters are present.
func (p *SearchParams) HasRadius() bool {
	return p.CenterLat != nil && p.CenterLng != nil && p.RadiusKM != nil
}

// HasTextQuery reports whether a non-empty free-text query was given.
func (p *SearchParams) HasTextQuery() bool {
	return p.Query != nil && strings.TrimSpace(*p.Query) != ""
}

func optString(values url.Values, key string) *string {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// optBool accepts only the literals "true"/"false" (case-insensitive).
// Anything else means unknown, never false.
func optBool(values url.Values, key string) *bool {
	switch strings.ToLower(strings.TrimSpace(values.Get(key))) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

// optFloat parses permissively; non-finite results are treated as absent,
// never as zero.
func optFloat(values url.Values, key string) *float64 {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// optList merges repeated keys and comma-separated values into one list,
// keeping first-seen order and dropping duplicates.
func optList(values url.Values, key string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if _, dup := seen[trimmed]; dup {
				continue
			}
			seen[trimmed] = struct{}{}
			out = append(out, trimmed)
		}
	}
	return out
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}
	if v < 1 {
		return 1
	}
	if v > MaxLimit {
		return MaxLimit
	}
	return v
}

func parseFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return defaultFieldSet()
	}

	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if !IsKnownColumn(trimmed) {
			// Unknown tokens are dropped silently; the whitelist is the
			// only thing that ever reaches the projection.
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return defaultFieldSet()
	}
	return ensureField(out, PrimaryKeyColumn)
}

func ensureField(fields []string, name string) []string {
	for _, f := range fields {
		if f == name {
			return fields
		}
	}
	return append(fields, name)
}
