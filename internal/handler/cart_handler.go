package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// エラー種別→ステータス。種別ラベル入りのメッセージをそのまま返す。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, repo.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrValidationRejected):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrNetwork):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 認証済みリクエストからユーザーIDと、トークンを積んだcontextを取り出す
func sessionContext(c echo.Context) (string, context.Context, bool) {
	uid, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || uid == "" {
		return "", nil, false
	}

	token, ok := c.Get(middleware.CtxTokenKey).(string)
	if !ok || token == "" {
		return "", nil, false
	}

	return uid, repo.WithToken(c.Request().Context(), token), true
}

func parseItemID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// /cartのHTTP
type CartHandler struct {
	sessions *usecase.SessionManager
}

// DI
func NewCartHandler(sessions *usecase.SessionManager) *CartHandler {
	return &CartHandler{sessions: sessions}
}

type AddCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" validate:"gte=1"`
}

// /cart, /cart/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.PATCH("/:id", h.patchItem)
	g.DELETE("/:id", h.deleteItem)
}

// 初回アクセスでロード、以降はキャッシュを返す。?refresh=trueで取り直し。
func (h *CartHandler) getCart(c echo.Context) error {
	userID, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	sess := h.sessions.Get(userID)
	refresh := c.QueryParam("refresh") == "true"

	if !sess.Cart.Loaded() || refresh {
		if err := sess.Cart.Load(ctx); err != nil {
			if !sess.Cart.Loaded() {
				return writeError(c, err)
			}
			// 取り直し失敗は旧キャッシュをstale付きで返す
		}
	}

	return c.JSON(http.StatusOK, sess.Cart.Summary())
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	sess := h.sessions.Get(userID)
	if err := h.ensureLoaded(ctx, sess); err != nil {
		return writeError(c, err)
	}

	if err := sess.Cart.AddItem(ctx, req.ProductID, req.Quantity); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, sess.Cart.Summary())
}

func (h *CartHandler) patchItem(c echo.Context) error {
	userID, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, ok := parseItemID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
	}

	sess := h.sessions.Get(userID)
	if err := h.ensureLoaded(ctx, sess); err != nil {
		return writeError(c, err)
	}

	if err := sess.Cart.UpdateQuantity(ctx, itemID, req.Quantity); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, sess.Cart.Summary())
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, ok := parseItemID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	sess := h.sessions.Get(userID)
	if err := h.ensureLoaded(ctx, sess); err != nil {
		return writeError(c, err)
	}

	if err := sess.Cart.RemoveItem(ctx, itemID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, sess.Cart.Summary())
}

func (h *CartHandler) ensureLoaded(ctx context.Context, sess *usecase.UserSession) error {
	if sess.Cart.Loaded() {
		return nil
	}
	return sess.Cart.Load(ctx)
}
