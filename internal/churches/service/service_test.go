package service

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/global-church/church-search-api/internal/churches/cursor"
	"github.com/global-church/church-search-api/internal/churches/repository"
	"github.com/global-church/church-search-api/internal/churches/transport"
	"github.com/global-church/church-search-api/platform/apperr"
	"github.com/global-church/church-search-api/platform/logger"
)

// fakeDirectory serves canned rows and records the queries it receives.
type fakeDirectory struct {
	rows []repository.Row

	lastText   *repository.TextQuery
	lastBBox   *repository.BBoxQuery
	lastRadius *repository.RadiusQuery
	globeCalls int
}

func (f *fakeDirectory) Search(_ context.Context, q repository.TextQuery) ([]repository.Row, error) {
	f.lastText = &q
	return f.page(q.AfterID, q.Limit), nil
}

func (f *fakeDirectory) SearchBBox(_ context.Context, q repository.BBoxQuery) ([]repository.Row, error) {
	f.lastBBox = &q
	return f.page(q.AfterID, q.Limit), nil
}

func (f *fakeDirectory) SearchRadius(_ context.Context, q repository.RadiusQuery) ([]repository.Row, error) {
	f.lastRadius = &q
	return f.page(q.AfterID, q.Limit), nil
}

func (f *fakeDirectory) SampleForGlobe(_ context.Context, limit int, afterID *string) ([]repository.Row, error) {
	f.globeCalls++
	return f.page(afterID, limit), nil
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*repository.Row, error) {
	for i := range f.rows {
		if f.rows[i].ChurchID == id {
			return &f.rows[i], nil
		}
	}
	return nil, nil
}

// page emulates an id-ordered keyset scan over the canned rows.
func (f *fakeDirectory) page(afterID *string, limit int) []repository.Row {
	out := make([]repository.Row, 0, limit)
	for _, row := range f.rows {
		if afterID != nil && row.ChurchID <= *afterID {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out
}

func strPtr(s string) *string        { return &s }
func floatPtr(f float64) *float64    { return &f }
func idRow(id string) repository.Row { return repository.Row{ChurchID: id, Name: strPtr("Church " + id)} }

func newTestService(repo Directory) *Service {
	return New(repo, logger.New("development"))
}

func paramsFrom(t *testing.T, query string) *transport.SearchParams {
	t.Helper()
	values, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("bad test query %q: %v", query, err)
	}
	p, err := transport.ParseSearchParams(values)
	if err != nil {
		t.Fatalf("ParseSearchParams(%q): %v", query, err)
	}
	return p
}

func TestPaginationWalk(t *testing.T) {
	repo := &fakeDirectory{rows: []repository.Row{idRow("A"), idRow("B"), idRow("C"), idRow("D"), idRow("E")}}
	svc := newTestService(repo)

	page, err := svc.Search(context.Background(), paramsFrom(t, "limit=2"))
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	assertIDs(t, page.Items, "A", "B")
	if !page.HasMore {
		t.Fatal("first page should have more")
	}
	assertCursorID(t, page.NextCursor, "B")

	page, err = svc.Search(context.Background(), paramsFrom(t, "limit=2&cursor="+*page.NextCursor))
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	assertIDs(t, page.Items, "C", "D")
	if !page.HasMore {
		t.Fatal("second page should have more")
	}
	assertCursorID(t, page.NextCursor, "D")

	page, err = svc.Search(context.Background(), paramsFrom(t, "limit=2&cursor="+*page.NextCursor))
	if err != nil {
		t.Fatalf("third page: %v", err)
	}
	assertIDs(t, page.Items, "E")
	if page.HasMore {
		t.Fatal("third page should be the last")
	}
	if page.NextCursor != nil {
		t.Fatalf("last page should have no cursor, got %q", *page.NextCursor)
	}
}

func TestRadiusWinsOverBBox(t *testing.T) {
	repo := &fakeDirectory{}
	svc := newTestService(repo)

	query := "min_lat=0&max_lat=1&min_lng=0&max_lng=1" +
		"&center_lat=51.5&center_lng=-0.1&radius_km=25"
	if _, err := svc.Search(context.Background(), paramsFrom(t, query)); err != nil {
		t.Fatalf("search: %v", err)
	}

	if repo.lastRadius == nil {
		t.Fatal("expected the radius query to run")
	}
	if repo.lastBBox != nil {
		t.Fatal("bbox query must not run when radius parameters are present")
	}
	if repo.lastRadius.RadiusM != 25000 {
		t.Fatalf("radius = %v m, want 25000 (km converted to metres)", repo.lastRadius.RadiusM)
	}
}

func TestGlobeWinsOverEverything(t *testing.T) {
	repo := &fakeDirectory{}
	svc := newTestService(repo)

	query := "for_globe=true&center_lat=1&center_lng=1&radius_km=1&q=hillsong"
	if _, err := svc.Search(context.Background(), paramsFrom(t, query)); err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.globeCalls != 1 {
		t.Fatalf("globe calls = %d, want 1", repo.globeCalls)
	}
	if repo.lastRadius != nil || repo.lastText != nil {
		t.Fatal("globe mode must short-circuit other query modes")
	}
}

func TestCursorModeMismatchRejected(t *testing.T) {
	svc := newTestService(&fakeDirectory{})

	token := cursor.Encode(cursor.Cursor{Mode: cursor.ModeDist, Dist: 100, ID: "A"})
	_, err := svc.Search(context.Background(), paramsFrom(t, "cursor="+token))
	if err == nil {
		t.Fatal("dist cursor against an id-ordered query must be rejected")
	}
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestIDCursorAcceptedAsDegradedContinuation(t *testing.T) {
	repo := &fakeDirectory{rows: []repository.Row{idRow("A"), idRow("B")}}
	svc := newTestService(repo)

	token := cursor.Encode(cursor.Cursor{Mode: cursor.ModeID, ID: "A"})
	if _, err := svc.Search(context.Background(), paramsFrom(t, "q=grace&cursor="+token)); err != nil {
		t.Fatalf("id cursor should be accepted for a rank query: %v", err)
	}

	if repo.lastText == nil {
		t.Fatal("expected the text query to run")
	}
	if repo.lastText.AfterRank != nil {
		t.Fatal("degraded continuation must not carry a rank lower bound")
	}
	if repo.lastText.AfterID == nil || *repo.lastText.AfterID != "A" {
		t.Fatalf("after id = %v, want A", repo.lastText.AfterID)
	}
}

func TestRankCursorBecomesKeysetArgs(t *testing.T) {
	repo := &fakeDirectory{}
	svc := newTestService(repo)

	token := cursor.Encode(cursor.Cursor{Mode: cursor.ModeRank, Rank: 0.75, ID: "chr_0009"})
	if _, err := svc.Search(context.Background(), paramsFrom(t, "q=grace&cursor="+token)); err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.lastText.AfterRank == nil || *repo.lastText.AfterRank != 0.75 {
		t.Fatalf("after rank = %v, want 0.75", repo.lastText.AfterRank)
	}
	if repo.lastText.AfterID == nil || *repo.lastText.AfterID != "chr_0009" {
		t.Fatalf("after id = %v, want chr_0009", repo.lastText.AfterID)
	}
}

func TestNextCursorDegradesWhenRankMissing(t *testing.T) {
	// Three rows for limit=2: the over-fetch detects more, but the backend
	// returned no rank values, so the cursor falls back to id mode.
	repo := &fakeDirectory{rows: []repository.Row{idRow("A"), idRow("B"), idRow("C")}}
	svc := newTestService(repo)

	page, err := svc.Search(context.Background(), paramsFrom(t, "q=grace&limit=2"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.NextCursor == nil {
		t.Fatal("expected a next cursor")
	}
	c, err := cursor.Decode(*page.NextCursor)
	if err != nil {
		t.Fatalf("decode next cursor: %v", err)
	}
	if c.Mode != cursor.ModeID || c.ID != "B" {
		t.Fatalf("cursor = %+v, want id-mode cursor at B", c)
	}
}

func TestNextCursorCarriesRank(t *testing.T) {
	rows := []repository.Row{
		{ChurchID: "A", Rank: floatPtr(0.9)},
		{ChurchID: "B", Rank: floatPtr(0.8)},
		{ChurchID: "C", Rank: floatPtr(0.7)},
	}
	svc := newTestService(&fakeDirectory{rows: rows})

	page, err := svc.Search(context.Background(), paramsFrom(t, "q=grace&limit=2"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	c, err := cursor.Decode(*page.NextCursor)
	if err != nil {
		t.Fatalf("decode next cursor: %v", err)
	}
	if c.Mode != cursor.ModeRank || c.Rank != 0.8 || c.ID != "B" {
		t.Fatalf("cursor = %+v, want rank 0.8 at B", c)
	}
}

func TestLegacyLanguageFilter(t *testing.T) {
	rows := []repository.Row{
		{ChurchID: "A", ServiceLanguages: []string{"English", "Spanish"}},
		{ChurchID: "B", ServiceLanguages: []string{"French"}},
		{ChurchID: "C", ServiceLanguages: []string{"english"}},
	}
	svc := newTestService(&fakeDirectory{rows: rows})

	page, err := svc.Search(context.Background(), paramsFrom(t, "language=ENGLISH&limit=10"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	assertIDs(t, page.Items, "A", "C")
	if page.HasMore {
		t.Fatal("expected no more rows")
	}
}

// has_more is decided before the legacy filter shrinks the page, mirroring
// the long-standing behaviour clients depend on.
func TestLegacyFilterDoesNotChangeHasMore(t *testing.T) {
	rows := []repository.Row{
		{ChurchID: "A", ServiceLanguages: []string{"French"}},
		{ChurchID: "B", ServiceLanguages: []string{"French"}},
		{ChurchID: "C", ServiceLanguages: []string{"French"}},
	}
	svc := newTestService(&fakeDirectory{rows: rows})

	page, err := svc.Search(context.Background(), paramsFrom(t, "language=English&limit=2"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("items = %v, want none after filtering", page.Items)
	}
	if !page.HasMore {
		t.Fatal("has_more reflects the raw backend count, not the filtered page")
	}
	if page.NextCursor != nil {
		t.Fatal("an empty visible page cannot mint a cursor")
	}
}

func TestProjectionLimitsFields(t *testing.T) {
	rows := []repository.Row{{
		ChurchID: "A",
		Name:     strPtr("Grace Fellowship"),
		Website:  strPtr("https://example.org"),
	}}
	svc := newTestService(&fakeDirectory{rows: rows})

	page, err := svc.Search(context.Background(), paramsFrom(t, "fields=name"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	item := page.Items[0]
	if _, ok := item["website"]; ok {
		t.Fatal("website was not requested and must not appear")
	}
	if _, ok := item["name"]; !ok {
		t.Fatal("name was requested and must appear")
	}
	if _, ok := item["church_id"]; !ok {
		t.Fatal("church_id is always included")
	}
}

func TestGeoJSONForcesCoordinates(t *testing.T) {
	rows := []repository.Row{
		{ChurchID: "A", Name: strPtr("With coords"), Latitude: floatPtr(51.5), Longitude: floatPtr(-0.1)},
		{ChurchID: "B", Name: strPtr("No coords")},
	}
	svc := newTestService(&fakeDirectory{rows: rows})

	page, err := svc.Search(context.Background(), paramsFrom(t, "format=geojson&fields=name"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Features == nil || len(page.Features.Features) != 2 {
		t.Fatalf("expected 2 features, got %+v", page.Features)
	}

	var geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(page.Features.Features[0].Geometry, &geometry); err != nil {
		t.Fatalf("unmarshal geometry: %v", err)
	}
	if geometry.Type != "Point" {
		t.Fatalf("geometry type = %q, want Point", geometry.Type)
	}
	if geometry.Coordinates[0] != -0.1 || geometry.Coordinates[1] != 51.5 {
		t.Fatalf("coordinates = %v, want [lng lat] = [-0.1 51.5]", geometry.Coordinates)
	}

	if string(page.Features.Features[1].Geometry) != "null" {
		t.Fatalf("missing coordinates must yield null geometry, got %s", page.Features.Features[1].Geometry)
	}

	props := page.Features.Features[0].Properties
	if _, ok := props["latitude"]; ok {
		t.Fatal("latitude must move into the geometry, not stay in properties")
	}
	if _, ok := props["longitude"]; ok {
		t.Fatal("longitude must move into the geometry, not stay in properties")
	}
}

func TestGetByID(t *testing.T) {
	repo := &fakeDirectory{rows: []repository.Row{idRow("A")}}
	svc := newTestService(repo)

	row, err := svc.GetByID(context.Background(), "A")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if row["church_id"] != "A" {
		t.Fatalf("church_id = %v, want A", row["church_id"])
	}

	_, err = svc.GetByID(context.Background(), "missing")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func assertIDs(t *testing.T, items []transport.Row, want ...string) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d (%v)", len(items), len(want), want)
	}
	for i, id := range want {
		if items[i]["church_id"] != id {
			t.Fatalf("item %d id = %v, want %s", i, items[i]["church_id"], id)
		}
	}
}

func assertCursorID(t *testing.T, token *string, wantID string) {
	t.Helper()
	if token == nil {
		t.Fatal("expected a next cursor")
	}
	c, err := cursor.Decode(*token)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if c.Mode != cursor.ModeID || c.ID != wantID {
		t.Fatalf("cursor = %+v, want id-mode at %s", c, wantID)
	}
}
