package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// echoに載せるリクエストバリデータ
type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

type Handlers struct {
	Cart           *handler.CartHandler
	Wishlist       *handler.WishlistHandler
	Order          *handler.OrderHandler
	Recommendation *handler.RecommendationHandler
	Session        *handler.SessionHandler
}

func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{v: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	h.Cart.RegisterRoutes(e, cfg)
	h.Wishlist.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Recommendation.RegisterRoutes(e, cfg)
	h.Session.RegisterRoutes(e, cfg)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
