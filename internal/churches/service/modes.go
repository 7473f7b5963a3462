package service

import (
	"fmt"

	"github.com/global-church/church-search-api/internal/churches/cursor"
	"github.com/global-church/church-search-api/internal/churches/transport"
	"github.com/global-church/church-search-api/platform/apperr"
)

// planKind names the backend query function a request resolves to.
type planKind int

const (
	planGlobe planKind = iota
	planRadius
	planBBox
	planQuery
)

func (k planKind) String() string {
	switch k {
	case planGlobe:
		return "globe"
	case planRadius:
		return "radius"
	case planBBox:
		return "bbox"
	default:
		return "query"
	}
}

// selectPlan picks the query function and the sort mode it implies.
// Precedence is fixed: globe hint, then radius, then bbox, then the plain
// attribute/text query. Each geo mode maps to a different backend ordering,
// so the winner also decides what a valid resume cursor must look like.
func selectPlan(p *transport.SearchParams) (planKind, cursor.Mode) {
	switch {
	case p.ForGlobe:
		return planGlobe, cursor.ModeID
	case p.HasRadius():
		return planRadius, cursor.ModeDist
	case p.HasBBox():
		return planBBox, cursor.ModeDist
	case p.HasTextQuery():
		return planQuery, cursor.ModeRank
	default:
		return planQuery, cursor.ModeID
	}
}

// keyset carries the lower-bound arguments for the backend's keyset scan.
// afterKey is the rank or distance of the last seen row depending on mode;
// afterID is the tie-break primary key.
type keyset struct {
	afterKey *float64
	afterID  *string
}

// keysetFor validates the cursor against the inferred sort mode and
// translates it into keyset predicates. An id cursor against a rank or dist
// query leaves afterKey nil; the backend then resumes by primary key order.
func keysetFor(c *cursor.Cursor, mode cursor.Mode) (keyset, error) {
	if c == nil {
		return keyset{}, nil
	}
	if !cursor.Compatible(c.Mode, mode) {
		return keyset{}, apperr.BadRequest(fmt.Sprintf(
			"cursor mode %q does not match the %q ordering of this query", c.Mode, mode))
	}

	id := c.ID
	switch c.Mode {
	case cursor.ModeRank:
		rank := c.Rank
		return keyset{afterKey: &rank, afterID: &id}, nil
	case cursor.ModeDist:
		dist := c.Dist
		return keyset{afterKey: &dist, afterID: &id}, nil
	case cursor.ModeID:
		return keyset{afterID: &id}, nil
	default:
		return keyset{}, apperr.BadRequest("Invalid cursor format")
	}
}
