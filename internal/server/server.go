package server

import (
	"log/slog"
	"net/http"
	"time"

	"audioshop/internal/handler"
	"audioshop/internal/middleware"
	repo "audioshop/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Deps struct {
	Logger    *slog.Logger
	JWTSecret string
	Users     repo.UserRepository

	Orders   *handler.OrderHandler
	Products *handler.ProductHandler
	UserH    *handler.UserHandler
}

// echoの組み立てとルート登録
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Secure())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	d.Products.RegisterRoutes(e, d.JWTSecret)
	d.Orders.RegisterRoutes(e, d.JWTSecret, d.Users)
	d.UserH.RegisterRoutes(e, d.JWTSecret)

	return e
}

func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
