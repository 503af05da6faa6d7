package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eventmarket-backend/internal/config"
	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers"
	"github.com/ignatzorin/eventmarket-backend/internal/http/middleware"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

// Handlers - все HTTP хэндлеры приложения.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Requests      *handlers.RequestHandler
	Pitches       *handlers.PitchHandler
	Payments      *handlers.PaymentHandler
	Reviews       *handlers.ReviewHandler
	Notifications *handlers.NotificationHandler
	WS            *handlers.WSHandler
	Health        *handlers.HealthHandler
}

func SetupRouter(cfg *config.Config, auth *service.AuthService, h Handlers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	api.GET("/ws", h.WS.Handle)

	public := api.Group("/users")
	public.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
	}

	// Чтение и выход доступны и заблокированным аккаунтам.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		protected.POST("/users/logout", h.Auth.Logout)
		protected.GET("/users/me", h.Auth.Me)

		protected.GET("/requests", h.Requests.List)
		protected.GET("/requests/mine", h.Requests.ListMine)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), h.Requests.Get)
		protected.GET("/requests/:id/pitches", middleware.UUIDValidator("id"), h.Requests.ListPitches)

		protected.GET("/pitches/mine", middleware.RequireRole(valueobject.RoleProvider), h.Pitches.Mine)

		protected.GET("/payments/request/:id/status", middleware.UUIDValidator("id"), h.Payments.GetStatus)
		protected.GET("/payments/mine", middleware.RequireRole(valueobject.RoleProvider), h.Payments.Mine)

		protected.GET("/reviews/provider/:id", middleware.UUIDValidator("id"), h.Reviews.ListByProvider)

		protected.GET("/notifications", h.Notifications.ListNotifications)
		protected.GET("/notifications/unread-count", h.Notifications.CountUnread)
	}

	// Изменяющие операции проходят проверку статуса аккаунта.
	mutating := api.Group("/")
	mutating.Use(middleware.AuthMiddleware(auth), middleware.AccountStatusGate(auth, cfg.SupportContact))
	{
		mutating.PUT("/admin/users/:id/status", middleware.RequireRole(valueobject.RoleAdmin), middleware.UUIDValidator("id"), h.Auth.UpdateAccountStatus)

		mutating.POST("/requests", middleware.RequireRole(valueobject.RoleClient, valueobject.RoleAdmin), h.Requests.Create)
		mutating.POST("/requests/:id/publish", middleware.UUIDValidator("id"), h.Requests.Publish)
		mutating.POST("/requests/:id/cancel", middleware.UUIDValidator("id"), h.Requests.Cancel)
		mutating.POST("/requests/:id/complete", middleware.UUIDValidator("id"), h.Requests.Complete)
		mutating.DELETE("/requests/:id", middleware.UUIDValidator("id"), h.Requests.Delete)

		mutating.POST("/pitches", middleware.RequireRole(valueobject.RoleProvider), h.Pitches.Submit)
		mutating.POST("/pitches/:id/select", middleware.UUIDValidator("id"), h.Pitches.Select)

		mutating.POST("/payments", h.Payments.Create)
		mutating.PUT("/payments/:id/status", middleware.UUIDValidator("id"), h.Payments.UpdateStatus)

		mutating.POST("/reviews", middleware.RequireRole(valueobject.RoleClient, valueobject.RoleAdmin), h.Reviews.Create)

		mutating.PUT("/notifications/read-all", h.Notifications.MarkAllAsRead)
		mutating.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notifications.MarkAsRead)
	}

	return r
}
