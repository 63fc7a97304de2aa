package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// セッションのライフサイクル（ログアウトでローカルキャッシュを破棄）
type SessionHandler struct {
	sessions *usecase.SessionManager
}

func NewSessionHandler(sessions *usecase.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/session")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/logout", h.logout)
}

func (h *SessionHandler) logout(c echo.Context) error {
	userID, _, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	h.sessions.Drop(userID)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
