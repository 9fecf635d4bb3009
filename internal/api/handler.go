package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"cafe-pos/internal/bus"
	"cafe-pos/internal/catalog"
	"cafe-pos/internal/engine"
	"cafe-pos/internal/models"
	"cafe-pos/internal/reporting"
	"cafe-pos/internal/store"
	"cafe-pos/internal/util"
	"cafe-pos/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	engine    *engine.Engine
	catalog   *catalog.Service
	reports   *reporting.Service
	store     store.API
	events    bus.Bus
	realtime  *ws.Server
	venueName string
	port      string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderEngine *engine.Engine,
	catalogService *catalog.Service,
	reportingService *reporting.Service,
	st store.API,
	events bus.Bus,
	realtime *ws.Server,
	venueName, port string,
) *Handler {
	return &Handler{
		engine:    orderEngine,
		catalog:   catalogService,
		reports:   reportingService,
		store:     st,
		events:    events,
		realtime:  realtime,
		venueName: venueName,
		port:      port,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", gin.WrapF(h.realtime.Handle))

	api := router.Group("/api")
	{
		api.GET("/health", h.healthCheck)
		api.GET("/server/info", h.serverInfo)

		api.GET("/tables", h.listTables)
		api.POST("/tables", h.createTable)
		api.PUT("/tables/:id", h.updateTable)
		api.DELETE("/tables/:id", h.deleteTable)
		api.POST("/tables/:id/request-payment", h.requestPayment)

		api.GET("/categories", h.listCategories)
		api.POST("/categories", h.createCategory)
		api.PUT("/categories/sort", h.sortCategories)
		api.PUT("/categories/:id", h.updateCategory)
		api.DELETE("/categories/:id", h.deleteCategory)

		api.GET("/products", h.listProducts)
		api.POST("/products", h.createProduct)
		api.PUT("/products/sort", h.sortProducts)
		api.PUT("/products/:id", h.updateProduct)
		api.DELETE("/products/:id", h.deleteProduct)

		api.POST("/orders", h.createOrder)
		api.POST("/orders/transfer", h.transferOrders)
		api.GET("/orders/:tableId", h.listOrders)
		api.PUT("/orders/:id", h.updateOrder)
		api.DELETE("/orders/:id", h.deleteOrder)

		api.POST("/payments", h.settlePayment)
		api.GET("/payments", h.paymentHistory)
		api.GET("/reports/daily", h.dailyReport)
		api.GET("/receipt/:tableId", h.receipt)

		api.GET("/settings", h.listSettings)
		api.PUT("/settings/:key", h.putSetting)

		api.POST("/auth/login", h.login)
	}
}

// respondError maps domain errors to client-visible status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// serverInfo reports the LAN address terminals should connect to.
func (h *Handler) serverInfo(c *gin.Context) {
	ip := networkIP()
	c.JSON(http.StatusOK, gin.H{
		"ip":   ip,
		"port": h.port,
		"url":  "http://" + net.JoinHostPort(ip, h.port),
	})
}

func networkIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return "localhost"
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
