package terminology

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/namaste/internal/platform/auth"
)

// SourceHeader reports which source answered a search.
const SourceHeader = "X-Terminology-Source"

const defaultSearchField = "disease"

// Handler provides REST endpoints for terminology search.
type Handler struct {
	svc   *Service
	guard *SearchGuard
}

// NewHandler creates a new terminology handler.
func NewHandler(svc *Service, guard *SearchGuard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

// RegisterRoutes registers terminology routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	termGroup := api.Group("/terminology")
	termGroup.GET("/search", h.Search, auth.RequireRole(auth.RoleDoctor))
	termGroup.GET("/fallback", h.ListFallback, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
}

type searchQuery struct {
	Term  string `query:"term" validate:"max=200"`
	Field string `query:"field" validate:"omitempty,alphanum,max=64"`
}

// Search handles GET /api/v1/terminology/search?term=...&field=...
// A newer search from the same principal for the same field cancels this one.
func (h *Handler) Search(c echo.Context) error {
	var q searchQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	if q.Field == "" {
		q.Field = defaultSearchField
	}

	key := q.Field
	if p, ok := auth.PrincipalFromContext(c.Request().Context()); ok {
		key = p.ID.String() + ":" + q.Field
	}

	ctx, done := h.guard.Begin(c.Request().Context(), key)
	defer done()

	result, err := h.svc.Search(ctx, q.Term)
	if err != nil {
		if Superseded(ctx) {
			return echo.NewHTTPError(http.StatusConflict, "search superseded by a newer request")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search cancelled")
	}

	c.Response().Header().Set(SourceHeader, result.Source)
	return c.JSON(http.StatusOK, result)
}

// ListFallback handles GET /api/v1/terminology/fallback
func (h *Handler) ListFallback(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Fallback())
}
