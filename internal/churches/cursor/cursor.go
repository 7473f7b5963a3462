// Package cursor implements the opaque keyset pagination token for church
// search. A cursor is a tagged union: it records which sort order the
// originating query used and the sort-key values of the last row returned, so
// a follow-up request can resume the scan exactly where the previous page
// ended.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/global-church/church-search-api/platform/apperr"
)

// Mode identifies the sort order a cursor was minted under.
type Mode string

const (
	// ModeRank resumes a text search ordered by relevance rank descending,
	// church_id ascending.
	ModeRank Mode = "rank"
	// ModeDist resumes a geo query ordered by distance ascending,
	// church_id ascending.
	ModeDist Mode = "dist"
	// ModeID resumes a plain scan ordered by church_id ascending.
	ModeID Mode = "id"
)

// Cursor carries the resume position of a paginated scan. Rank is meaningful
// only when Mode is ModeRank, Dist only when Mode is ModeDist; ID is always
// set.
type Cursor struct {
	Mode Mode
	Rank float64
	Dist float64
	ID   string
}

// payload is the wire shape. Pointer numerics distinguish "absent" from zero
// during validation.
type payload struct {
	Mode string   `json:"mode"`
	Rank *float64 `json:"rank,omitempty"`
	Dist *float64 `json:"dist,omitempty"`
	ID   string   `json:"id"`
}

// Encode serializes the cursor to a URL-safe opaque token: compact JSON in
// the base64 URL alphabet with padding stripped. The result is safe to embed
// in a query string without further escaping.
func Encode(c Cursor) string {
	p := payload{Mode: string(c.Mode), ID: c.ID}
	switch c.Mode {
	case ModeRank:
		rank := c.Rank
		p.Rank = &rank
	case ModeDist:
		dist := c.Dist
		p.Dist = &dist
	case ModeID:
	}
	raw, err := json.Marshal(p)
	if err != nil {
		// payload contains only strings and floats; Marshal cannot fail.
		panic(fmt.Sprintf("cursor: marshal: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses and validates an opaque token produced by Encode. Any
// structural deviation is a client error: the token is replayed verbatim by
// API consumers and a mangled one means the caller is misusing the API.
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, apperr.BadRequest("Invalid cursor format")
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Cursor{}, apperr.BadRequest("Invalid cursor format")
	}
	if p.ID == "" {
		return Cursor{}, apperr.BadRequest("Invalid cursor: missing id")
	}

	switch Mode(p.Mode) {
	case ModeRank:
		if p.Rank == nil {
			return Cursor{}, apperr.BadRequest("Invalid rank cursor: missing rank")
		}
		return Cursor{Mode: ModeRank, Rank: *p.Rank, ID: p.ID}, nil
	case ModeDist:
		if p.Dist == nil {
			return Cursor{}, apperr.BadRequest("Invalid dist cursor: missing dist")
		}
		return Cursor{Mode: ModeDist, Dist: *p.Dist, ID: p.ID}, nil
	case ModeID:
		return Cursor{Mode: ModeID, ID: p.ID}, nil
	default:
		return Cursor{}, apperr.BadRequest(fmt.Sprintf("Invalid cursor mode %q", p.Mode))
	}
}

// Compatible reports whether a cursor minted under have can resume a query
// sorted under want. An id cursor is accepted everywhere as a degraded
// continuation: the scan resumes by primary key, losing rank/distance
// ordering but never skipping or repeating rows.
func Compatible(have, want Mode) bool {
	return have == want || have == ModeID
}
