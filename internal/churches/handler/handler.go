package handler

import (
	"strconv"

	"github.com/global-church/church-search-api/internal/churches/service"
	"github.com/global-church/church-search-api/internal/churches/transport"
	"github.com/global-church/church-search-api/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Search)
	rg.GET("/:id", h.GetByID)
}

// Search handles GET /v1/churches. Pagination state is mirrored in the
// X-Limit, X-Has-More and X-Next-Cursor headers for both output formats.
func (h *Handler) Search(c *gin.Context) {
	params, err := transport.ParseSearchParams(c.Request.URL.Query())
	if httpkit.HandleError(c, err) {
		return
	}

	page, err := h.svc.Search(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("X-Limit", strconv.Itoa(page.Limit))
	c.Header("X-Has-More", strconv.FormatBool(page.HasMore))
	if page.NextCursor != nil {
		c.Header("X-Next-Cursor", *page.NextCursor)
	}

	if params.Format == transport.FormatGeoJSON {
		httpkit.OK(c, page.Features)
		return
	}

	items := page.Items
	if items == nil {
		items = []transport.Row{}
	}
	httpkit.OK(c, transport.SearchResponse{
		Items:      items,
		Limit:      page.Limit,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	})
}

// GetByID handles GET /v1/churches/:id.
func (h *Handler) GetByID(c *gin.Context) {
	row, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, row)
}
