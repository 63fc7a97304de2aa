package handler

import (
	"context"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /wishlistのHTTP
type WishlistHandler struct {
	sessions *usecase.SessionManager
}

func NewWishlistHandler(sessions *usecase.SessionManager) *WishlistHandler {
	return &WishlistHandler{sessions: sessions}
}

type AddWishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

func (h *WishlistHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/wishlist")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.getWishlist)
	g.POST("", h.addItem)
	g.DELETE("/:id", h.deleteItem)
	g.POST("/:id/move-to-cart", h.moveToCart)
}

func (h *WishlistHandler) getWishlist(c echo.Context) error {
	userID, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	sess := h.sessions.Get(userID)
	refresh := c.QueryParam("refresh") == "true"

	if !sess.Wishlist.Loaded() || refresh {
		if err := sess.Wishlist.Load(ctx); err != nil {
			if !sess.Wishlist.Loaded() {
				return writeError(c, err)
			}
		}
	}

	return c.JSON(http.StatusOK, sess.Wishlist.Summary())
}

func (h *WishlistHandler) addItem(c echo.Context) error {
	userID, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddWishlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sess := h.sessions.Get(userID)
	if err := h.ensureLoaded(ctx, sess); err != nil {
		return writeError(c, err)
	}

	if err := sess.Wishlist.AddItem(ctx, req.ProductID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, sess.Wishlist.Summary())
}

func (h *WishlistHandler) deleteItem(c echo.Context) error {
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

	if err := sess.Wishlist.RemoveItem(ctx, itemID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, sess.Wishlist.Summary())
}

// ウィッシュリスト→カートへの移動。カート追加→ウィッシュリスト削除の2段で、
// アトミックではない（追加成功・削除失敗なら両方に残る）。
func (h *WishlistHandler) moveToCart(c echo.Context) error {
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

	productID, found := findWishlistProduct(sess, itemID)
	if !found {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	if !sess.Cart.Loaded() {
		if err := sess.Cart.Load(ctx); err != nil {
			return writeError(c, err)
		}
	}

	if err := sess.Cart.AddItem(ctx, productID, 1); err != nil {
		return writeError(c, err)
	}
	if err := sess.Wishlist.RemoveItem(ctx, itemID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"cart":     sess.Cart.Summary(),
		"wishlist": sess.Wishlist.Summary(),
	})
}

func (h *WishlistHandler) ensureLoaded(ctx context.Context, sess *usecase.UserSession) error {
	if sess.Wishlist.Loaded() {
		return nil
	}
	return sess.Wishlist.Load(ctx)
}

func findWishlistProduct(sess *usecase.UserSession, itemID int64) (string, bool) {
	for _, it := range sess.Wishlist.Snapshot() {
		if it.ID == itemID {
			return it.ProductID, true
		}
	}
	return "", false
}
