// Package apikeys is the developer portal API key management module.
package apikeys

import (
	"github.com/global-church/church-search-api/internal/apikeys/handler"
	"github.com/global-church/church-search-api/internal/apikeys/repository"
	"github.com/global-church/church-search-api/internal/apikeys/service"
	apphttp "github.com/global-church/church-search-api/internal/http"
	"github.com/global-church/church-search-api/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "apikeys"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/keys"))
}

var _ apphttp.Module = (*Module)(nil)
