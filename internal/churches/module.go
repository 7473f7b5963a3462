// Package churches is the public church directory search module.
package churches

import (
	"github.com/global-church/church-search-api/internal/churches/handler"
	"github.com/global-church/church-search-api/internal/churches/repository"
	"github.com/global-church/church-search-api/internal/churches/service"
	apphttp "github.com/global-church/church-search-api/internal/http"
	"github.com/global-church/church-search-api/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)

	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "churches"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/churches"))
}

var _ apphttp.Module = (*Module)(nil)
