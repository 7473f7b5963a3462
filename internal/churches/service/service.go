// Package service implements church search: query mode selection, keyset
// pagination assembly, field projection and GeoJSON conversion.
package service

import (
	"context"
	"strings"

	"github.com/global-church/church-search-api/internal/churches/cursor"
	"github.com/global-church/church-search-api/internal/churches/repository"
	"github.com/global-church/church-search-api/internal/churches/transport"
	"github.com/global-church/church-search-api/platform/apperr"
	"github.com/global-church/church-search-api/platform/logger"
)

type Service struct {
	repo Directory
	log  *logger.Logger
}

func New(repo Directory, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Search executes one paginated search request. It over-fetches by one row to
// detect whether more results exist, truncates to the requested page size and
// mints the resume cursor from the last visible row.
func (s *Service) Search(ctx context.Context, p *transport.SearchParams) (*transport.ResultPage, error) {
	kind, mode := selectPlan(p)

	ks, err := keysetFor(p.Cursor, mode)
	if err != nil {
		return nil, err
	}

	rows, err := s.fetch(ctx, p, kind, ks)
	if err != nil {
		if appErr, ok := err.(*apperr.Error); ok {
			return nil, appErr
		}
		s.log.DatabaseError("churches.search."+kind.String(), err)
		return nil, apperr.Wrap(apperr.KindInternal, "search failed", err).WithOp("churches.Search")
	}

	// has_more is decided on the raw backend row count; the legacy singular
	// filters below can only shrink the visible page. See DESIGN.md.
	rawCount := len(rows)
	rows = applyLegacyFilters(rows, p)

	hasMore := rawCount > p.Limit
	if len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}

	var next *string
	if hasMore && len(rows) > 0 {
		token := cursor.Encode(cursorForRow(&rows[len(rows)-1], mode))
		next = &token
	}

	page := &transport.ResultPage{
		Limit:      p.Limit,
		HasMore:    hasMore,
		NextCursor: next,
	}

	items := projectRows(rows, effectiveFields(p))
	if p.Format == transport.FormatGeoJSON {
		page.Features = buildFeatureCollection(rows, items)
	} else {
		page.Items = items
	}
	return page, nil
}

// GetByID returns a single church projected over the full column whitelist.
func (s *Service) GetByID(ctx context.Context, id string) (transport.Row, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if appErr, ok := err.(*apperr.Error); ok {
			return nil, appErr
		}
		s.log.DatabaseError("churches.get_by_id", err)
		return nil, apperr.Wrap(apperr.KindInternal, "lookup failed", err).WithOp("churches.GetByID")
	}
	if row == nil {
		return nil, apperr.NotFound("church not found")
	}
	return projectRow(row, transport.AllColumns()), nil
}

func (s *Service) fetch(ctx context.Context, p *transport.SearchParams, kind planKind, ks keyset) ([]repository.Row, error) {
	fetchLimit := p.Limit + 1
	filters := repository.Filters{
		Country:     p.Country,
		Belief:      p.Belief,
		Trinitarian: p.Trinitarian,
		Region:      p.Region,
		Locality:    p.Locality,
		PostalCode:  p.PostalCode,
		Languages:   p.Languages,
		Programs:    p.Programs,
	}

	switch kind {
	case planGlobe:
		return s.repo.SampleForGlobe(ctx, fetchLimit, ks.afterID)
	case planRadius:
		return s.repo.SearchRadius(ctx, repository.RadiusQuery{
			Filters:   filters,
			CenterLat: *p.CenterLat,
			CenterLng: *p.CenterLng,
			RadiusM:   *p.RadiusKM * 1000,
			AfterDist: ks.afterKey,
			AfterID:   ks.afterID,
			Limit:     fetchLimit,
		})
	case planBBox:
		return s.repo.SearchBBox(ctx, repository.BBoxQuery{
			Filters:   filters,
			MinLat:    *p.MinLat,
			MaxLat:    *p.MaxLat,
			MinLng:    *p.MinLng,
			MaxLng:    *p.MaxLng,
			AfterDist: ks.afterKey,
			AfterID:   ks.afterID,
			Limit:     fetchLimit,
		})
	default:
		return s.repo.Search(ctx, repository.TextQuery{
			Filters:   filters,
			Text:      p.Query,
			EqualsID:  p.EqualsID,
			AfterRank: ks.afterKey,
			AfterID:   ks.afterID,
			Limit:     fetchLimit,
		})
	}
}

// cursorForRow derives the resume cursor from the last visible row. A rank or
// dist cursor needs the row's numeric sort key; when the backend did not
// return one, the cursor degrades to id mode instead of failing the request.
func cursorForRow(row *repository.Row, mode cursor.Mode) cursor.Cursor {
	switch mode {
	case cursor.ModeRank:
		if row.Rank != nil {
			return cursor.Cursor{Mode: cursor.ModeRank, Rank: *row.Rank, ID: row.ChurchID}
		}
	case cursor.ModeDist:
		if row.DistanceM != nil {
			return cursor.Cursor{Mode: cursor.ModeDist, Dist: *row.DistanceM, ID: row.ChurchID}
		}
	}
	return cursor.Cursor{Mode: cursor.ModeID, ID: row.ChurchID}
}

// applyLegacyFilters narrows rows by the singular language/program
// parameters. This predates the plural list filters and runs client-side as a
// best-effort convenience; new clients should filter via languages/programs.
func applyLegacyFilters(rows []repository.Row, p *transport.SearchParams) []repository.Row {
	if p.LegacyLanguage == nil && p.LegacyProgram == nil {
		return rows
	}

	out := make([]repository.Row, 0, len(rows))
	for _, row := range rows {
		if p.LegacyLanguage != nil && !containsFold(row.ServiceLanguages, *p.LegacyLanguage) {
			continue
		}
		if p.LegacyProgram != nil && !containsFold(row.MinistryNames, *p.LegacyProgram) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, item := range haystack {
		if strings.Contains(strings.ToLower(item), needle) {
			return true
		}
	}
	return false
}

// effectiveFields is the projection the backend rows are shaped with. GeoJSON
// output needs coordinates even when the caller did not ask for them, so a
// valid Point geometry can be built.
func effectiveFields(p *transport.SearchParams) []string {
	fields := p.Fields
	if p.Format == transport.FormatGeoJSON {
		fields = append([]string(nil), fields...)
		fields = ensure(fields, transport.LatitudeColumn)
		fields = ensure(fields, transport.LongitudeColumn)
	}
	return fields
}

func ensure(fields []string, name string) []string {
	for _, f := range fields {
		if f == name {
			return fields
		}
	}
	return append(fields, name)
}
