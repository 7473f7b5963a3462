// Package repository invokes the Postgres church query functions. The four
// functions (search_churches, search_churches_by_bbox,
// search_churches_by_radius, churches_for_globe) own filtering, ordering and
// keyset predicates; this layer only binds arguments and scans rows.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/global-church/church-search-api/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Row is one church record as returned by the query functions. Rank is set
// only by text searches, DistanceM only by geo queries.
type Row struct {
	ChurchID         string
	GersID           *string
	Name             *string
	Latitude         *float64
	Longitude        *float64
	Address          *string
	Locality         *string
	Region           *string
	PostalCode       *string
	Country          *string
	Website          *string
	PipelineStatus   *string
	BeliefType       *string
	Trinitarian      *bool
	ChurchBeliefsURL *string
	ServicesInfo     *string
	ServiceLanguages []string
	MinistryNames    []string
	BestPhone        *string
	BestEmail        *string
	InstagramURL     *string
	YoutubeURL       *string

	Rank      *float64
	DistanceM *float64
}

// Filters are the attribute filters shared by every query mode.
type Filters struct {
	Country     *string
	Belief      *string
	Trinitarian *bool
	Region      *string
	Locality    *string
	PostalCode  *string
	Languages   []string
	Programs    []string
}

// TextQuery drives search_churches.
type TextQuery struct {
	Filters
	Text      *string
	EqualsID  *string
	AfterRank *float64
	AfterID   *string
	Limit     int
}

// BBoxQuery drives search_churches_by_bbox.
type BBoxQuery struct {
	Filters
	MinLat    float64
	MaxLat    float64
	MinLng    float64
	MaxLng    float64
	AfterDist *float64
	AfterID   *string
	Limit     int
}

// RadiusQuery drives search_churches_by_radius. RadiusM is in metres, the
// backend's native distance unit.
type RadiusQuery struct {
	Filters
	CenterLat float64
	CenterLng float64
	RadiusM   float64
	AfterDist *float64
	AfterID   *string
	Limit     int
}

type extraCol int

const (
	extraNone extraCol = iota
	extraRank
	extraDist
)

// Search runs the attribute/text query, ordered rank desc + id asc when a
// text query is given, id asc otherwise.
func (r *Repository) Search(ctx context.Context, q TextQuery) ([]Row, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM search_churches($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		q.Text, q.Country, q.Belief, q.Trinitarian, q.Region, q.Locality, q.PostalCode,
		q.Languages, q.Programs, q.EqualsID, q.AfterRank, q.AfterID, q.Limit,
	)
	if err != nil {
		return nil, classify("search_churches", err)
	}
	return collect(rows, extraRank)
}

// SearchBBox runs the bounding-box query, ordered distance asc + id asc.
func (r *Repository) SearchBBox(ctx context.Context, q BBoxQuery) ([]Row, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM search_churches_by_bbox($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		q.MinLat, q.MaxLat, q.MinLng, q.MaxLng,
		q.Country, q.Belief, q.Trinitarian, q.Region, q.Locality, q.PostalCode,
		q.Languages, q.Programs, q.AfterDist, q.AfterID, q.Limit,
	)
	if err != nil {
		return nil, classify("search_churches_by_bbox", err)
	}
	return collect(rows, extraDist)
}

// SearchRadius runs the radius query, ordered distance asc + id asc.
func (r *Repository) SearchRadius(ctx context.Context, q RadiusQuery) ([]Row, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM search_churches_by_radius($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		q.CenterLat, q.CenterLng, q.RadiusM,
		q.Country, q.Belief, q.Trinitarian, q.Region, q.Locality, q.PostalCode,
		q.Languages, q.Programs, q.AfterDist, q.AfterID, q.Limit,
	)
	if err != nil {
		return nil, classify("search_churches_by_radius", err)
	}
	return collect(rows, extraDist)
}

// SampleForGlobe runs the filter-light sampling query, ordered id asc.
func (r *Repository) SampleForGlobe(ctx context.Context, limit int, afterID *string) ([]Row, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM churches_for_globe($1, $2)`,
		limit, afterID,
	)
	if err != nil {
		return nil, classify("churches_for_globe", err)
	}
	return collect(rows, extraNone)
}

// GetByID fetches a single church record, nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Row, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT church_id, gers_id, name, latitude, longitude, address, locality,
		        region, postal_code, country, website, pipeline_status, belief_type,
		        trinitarian_beliefs, church_beliefs_url, services_info,
		        service_languages, ministry_names, best_phone, best_email,
		        instagram_url, youtube_url
		 FROM churches WHERE church_id = $1`,
		id,
	)
	if err != nil {
		return nil, classify("churches_by_id", err)
	}
	results, err := collect(rows, extraNone)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func collect(rows pgx.Rows, extra extraCol) ([]Row, error) {
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		var row Row
		dest := []interface{}{
			&row.ChurchID, &row.GersID, &row.Name, &row.Latitude, &row.Longitude,
			&row.Address, &row.Locality, &row.Region, &row.PostalCode, &row.Country,
			&row.Website, &row.PipelineStatus, &row.BeliefType, &row.Trinitarian,
			&row.ChurchBeliefsURL, &row.ServicesInfo, &row.ServiceLanguages,
			&row.MinistryNames, &row.BestPhone, &row.BestEmail,
			&row.InstagramURL, &row.YoutubeURL,
		}
		switch extra {
		case extraRank:
			dest = append(dest, &row.Rank)
		case extraDist:
			dest = append(dest, &row.DistanceM)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classify surfaces backend-raised query errors (invalid filter combinations
// and bad input) as client errors; everything else stays an internal failure.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "P0001" || (len(pgErr.Code) >= 2 && pgErr.Code[:2] == "22") {
			return apperr.BadRequest(pgErr.Message).WithOp(op)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
