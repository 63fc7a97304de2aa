package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkout と /orders のHTTP
type OrderHandler struct {
	sessions *usecase.SessionManager
	orders   *usecase.OrderUsecase
}

func NewOrderHandler(sessions *usecase.SessionManager, orders *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{sessions: sessions, orders: orders}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	co := e.Group("/checkout")
	co.Use(middleware.AuthJWT(cfg))
	co.POST("", h.checkout)

	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

// 二重クリックの2回目はin-flightの結果に相乗りする（注文は1回だけ飛ぶ）
func (h *OrderHandler) checkout(c echo.Context) error {
	userID, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	sess := h.sessions.Get(userID)
	if !sess.Cart.Loaded() {
		if err := sess.Cart.Load(ctx); err != nil {
			return writeError(c, err)
		}
	}

	order, err := sess.Checkout.PlaceOrder(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) list(c echo.Context) error {
	_, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) detail(c echo.Context) error {
	_, ctx, ok := sessionContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	order, err := h.orders.OrderDetail(ctx, orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}
