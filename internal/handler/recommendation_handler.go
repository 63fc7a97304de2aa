package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /recommendations の公開API（中身は不透明なフィードの素通し）
type RecommendationHandler struct {
	uc *usecase.RecommendationUsecase
}

func NewRecommendationHandler(uc *usecase.RecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{uc: uc}
}

func (h *RecommendationHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/recommendations")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.list)
}

func (h *RecommendationHandler) list(c echo.Context) error {
	_, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	products, err := h.uc.List(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"recommendations": products})
}
