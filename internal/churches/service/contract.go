package service

import (
	"context"

	"github.com/global-church/church-search-api/internal/churches/repository"
)

// Directory is the backend query surface the service depends on. The
// production implementation is the pgx repository; tests substitute a fake.
type Directory interface {
	Search(ctx context.Context, q repository.TextQuery) ([]repository.Row, error)
	SearchBBox(ctx context.Context, q repository.BBoxQuery) ([]repository.Row, error)
	SearchRadius(ctx context.Context, q repository.RadiusQuery) ([]repository.Row, error)
	SampleForGlobe(ctx context.Context, limit int, afterID *string) ([]repository.Row, error)
	GetByID(ctx context.Context, id string) (*repository.Row, error)
}
