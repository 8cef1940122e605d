package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"pharmahub-service/internal/auth"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/service"
	"pharmahub-service/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services groups the dependencies of the HTTP layer
type Services struct {
	Tokens         *auth.Manager
	Roles          RoleResolver
	Users          *service.UserService
	Medicines      *service.MedicineService
	Carts          *service.CartService
	Payments       *service.PaymentService
	Dashboard      *service.DashboardService
	Advertisements *service.AdvertisementService
}

// ReadinessCheck probes one backing dependency
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	checks []ReadinessCheck
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, checks ...ReadinessCheck) *Handler {
	return &Handler{
		svc:    svc,
		checks: checks,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine, corsOrigins []string) {
	router.Use(cors.New(corsConfig(corsOrigins)))
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/", h.banner)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := RequireAuthenticated(h.svc.Tokens)
	seller := RequireRole(h.svc.Roles, models.RoleSeller)
	admin := RequireRole(h.svc.Roles, models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/jwt", h.issueToken)

		v1.GET("/medicines", h.listMedicines)
		v1.GET("/medicines/:id", h.getMedicine)
		v1.POST("/medicines", authed, seller, h.createMedicine)
		v1.PATCH("/medicines/:id", authed, seller, h.updateMedicine)
		v1.DELETE("/medicines/:id", authed, seller, h.deleteMedicine)

		v1.POST("/users", h.registerUser)
		v1.GET("/users", authed, admin, h.listUsers)
		v1.GET("/users/me/role", authed, h.myRole)
		v1.PATCH("/users/me", authed, h.updateProfile)
		v1.PATCH("/users/:id/role", authed, admin, h.updateUserRole)

		v1.GET("/carts", authed, h.listCart)
		v1.POST("/carts", authed, h.addCartItem)
		v1.PATCH("/carts/:id", authed, h.updateCartItem)
		v1.DELETE("/carts/:id", authed, h.deleteCartItem)
		v1.DELETE("/carts", authed, h.clearCart)

		v1.POST("/create-payment-intent", authed, h.createPaymentIntent)
		v1.POST("/payments", authed, h.reconcilePayment)
		v1.GET("/payments/history", authed, h.paymentHistory)
		v1.GET("/payments", authed, admin, h.listPayments)
		v1.PATCH("/payments/:id/status", authed, admin, h.updatePaymentStatus)
		v1.GET("/seller/payments", authed, seller, h.sellerPayments)

		v1.GET("/admin/stats", authed, admin, h.adminStats)
		v1.GET("/seller/stats", authed, seller, h.sellerStats)

		v1.GET("/advertisements/active", h.activeAdvertisements)
		v1.POST("/advertisements", authed, seller, h.submitAdvertisement)
		v1.GET("/advertisements/mine", authed, seller, h.myAdvertisements)
		v1.GET("/advertisements", authed, admin, h.listAdvertisements)
		v1.PATCH("/advertisements/:id/status", authed, admin, h.updateAdvertisementStatus)
	}
}

func (h *Handler) banner(c *gin.Context) {
	c.String(http.StatusOK, "PharmaHub is Running...")
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every backing dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			failed[check.Name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
