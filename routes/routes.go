package routes

import (
	"net/http"
	"time"

	"nestmart/handlers"
	"nestmart/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPaymentRoutes registers the payment lifecycle endpoints. Gateway
// callbacks are unauthenticated; they only act on a matching transaction id.
// The GET variants are browser returns from a hosted checkout.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/payment")
	{
		api.PATCH("/:listingId", hb.Payment.InitiatePaymentHandler)
		api.POST("/success", hb.Payment.PaymentSuccessHandler)
		api.POST("/fail", hb.Payment.PaymentFailHandler)
		api.POST("/cancel", hb.Payment.PaymentCancelHandler)
		api.POST("/ipn", hb.Payment.PaymentIPNHandler)
		api.POST("/stripe/webhook", hb.Payment.StripeWebhookHandler)

		api.GET("/success", hb.Payment.PaymentReturnHandler)
		api.GET("/cancel", hb.Payment.PaymentCancelHandler)
	}
	r.GET("/property/:tran_id", middleware.JWTAuthMiddleware(hb.Tokens, false), hb.Payment.LookupPaymentHandler)
}

// registerRecordRoutes wires the read-public, write-protected CRUD set.
func registerRecordRoutes(r *gin.Engine, path string, h *handlers.RecordsHandler, hb *handlers.HandlerBundle) *gin.RouterGroup {
	api := r.Group(path)
	{
		api.GET("", h.ListHandler)
		api.GET("/:id", h.GetHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.Tokens, false))
		protected.POST("", h.CreateHandler)
		protected.PATCH("/:id", h.UpdateHandler)
		protected.DELETE("/:id", h.DeleteHandler)
	}
	return api
}

// RegisterRecordRoutes registers products, blogs and reviews.
func RegisterRecordRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	products := registerRecordRoutes(r, "/products", hb.Products, hb)
	products.GET("/categories/:category", hb.Products.ListByParamHandler("category", "category"))

	blogs := registerRecordRoutes(r, "/blogs", hb.Blogs, hb)
	blogs.GET("/me/:email", hb.Blogs.ListByParamHandler("authorEmail", "email"))

	reviews := registerRecordRoutes(r, "/reviews", hb.Reviews, hb)
	reviews.GET("/me/:email", hb.Reviews.ListByParamHandler("authorEmail", "email"))
}

// RegisterPropertyRoutes registers listing CRUD. The listing index accepts
// an optional token to reveal hidden listings.
func RegisterPropertyRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/properties")
	{
		api.GET("", middleware.JWTAuthMiddleware(hb.Tokens, true), hb.Properties.ListHandler)
		api.GET("/:id", hb.Properties.GetHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.Tokens, false))
		protected.POST("", hb.Properties.CreateHandler)
		protected.PATCH("/:id", hb.Properties.UpdateHandler)
		protected.DELETE("/:id", hb.Properties.DeleteHandler)
	}
}

// RegisterUserRoutes registers user endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/users")
	{
		api.POST("", hb.Users.RegisterUserHandler)
		api.GET("/get/:id", hb.Users.GetUserByIDHandler)
		api.GET("/:email", hb.Users.GetUserByEmailHandler)
		api.PATCH("/:id", hb.Users.UpdateUserHandler)
		api.DELETE("/:id", hb.Users.DeleteHandler)

		api.GET("", middleware.JWTAuthMiddleware(hb.Tokens, false), hb.Users.ListUsersHandler)
	}
}

// RegisterUploadRoutes registers listing image upload endpoints.
func RegisterUploadRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/upload")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Tokens, false))
		api.POST("", hb.Storage.UploadFileHandler)
		api.DELETE("/*publicId", hb.Storage.DeleteFileHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", handlers.RootHandler)
	r.GET("/health", hb.Health.HealthCheckHandler)
	r.POST("/jwt", hb.Auth.IssueTokenHandler)
	r.GET("/states", middleware.JWTAuthMiddleware(hb.Tokens, false), hb.Stats.GetStatsHandler)

	RegisterPaymentRoutes(r, hb)
	RegisterPropertyRoutes(r, hb)
	RegisterRecordRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterUploadRoutes(r, hb)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}
