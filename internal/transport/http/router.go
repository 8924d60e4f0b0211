package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/httpx"
)

// HeaderUserID — идентификатор пользователя от шлюза авторизации.
const HeaderUserID = "X-User-ID"

// Handler — HTTP-обработчики корзины, checkout и заказов.
type Handler struct {
	carts      ports.CartService
	checkout   ports.CheckoutService
	orders     ports.OrderReadService
	log        ports.Logger
	reqTimeout time.Duration
}

// NewHandler — DI-конструктор. reqTimeout <= 0 — без отдельного дедлайна на запрос.
func NewHandler(
	carts ports.CartService,
	checkout ports.CheckoutService,
	orders ports.OrderReadService,
	log ports.Logger,
	reqTimeout time.Duration,
) *Handler {
	return &Handler{
		carts:      carts,
		checkout:   checkout,
		orders:     orders,
		log:        log,
		reqTimeout: reqTimeout,
	}
}

// NewRouter — gin-роутер с middleware: recovery, otel (если задано имя сервиса), request id, логирование.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.UserIDMiddleware(HeaderUserID))
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cart := r.Group("/cart")
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/items", h.addItem)
	cart.PATCH("/items", h.bulkUpdate)
	cart.PUT("/items/:product_id", h.updateItem)
	cart.DELETE("/items/:product_id", h.removeItem)
	cart.POST("/checkout", h.placeOrder)

	r.GET("/orders", h.listOrders)
	r.GET("/orders/:id", h.getOrder)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r
}

// requestContext — контекст запроса с дедлайном обработчика.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.reqTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.reqTimeout)
}
