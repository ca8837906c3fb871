package routes

import (
	"net/http"

	"counseling-app-server/internal/config"
	"counseling-app-server/internal/handlers"
	"counseling-app-server/internal/middleware"
	"counseling-app-server/internal/models"
	"counseling-app-server/internal/notify"
	"counseling-app-server/internal/services"
	"counseling-app-server/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the long-lived collaborators the handlers are built from.
type Dependencies struct {
	Store    store.Store
	Config   *config.Config
	Logger   *zap.Logger
	Notifier notify.Notifier
}

// SetupRoutes configures the application routes. The appointment service is
// returned so the caller can drain its urgent alerts on shutdown.
func SetupRoutes(router *gin.Engine, deps Dependencies) *services.AppointmentService {
	st, cfg, log := deps.Store, deps.Config, deps.Logger

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}

	// Initialize services and handlers
	appointmentService := services.NewAppointmentService(st, log, services.WithNotifier(notifier))
	authHandler := handlers.NewAuthHandler(st, cfg, log)
	userHandler := handlers.NewUserHandler(st, log)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, log)
	counselorHandler := handlers.NewCounselorHandler(services.NewCounselorService(st, log), log)
	notificationHandler := handlers.NewNotificationHandler(services.NewNotificationService(st), log)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes (admin-only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
		}

		// Counselor directory - accessible by all authenticated users
		counselorRoutes := private.Group("/counselors")
		{
			counselorRoutes.GET("", counselorHandler.GetCounselors)
			counselorRoutes.GET("/:id", counselorHandler.GetCounselor)
			// Counselors edit their own schedule, admins any (checked in the service)
			counselorRoutes.PUT("/:id/availability",
				middleware.RoleAuthMiddleware(models.RoleCounselor, models.RoleAdmin),
				counselorHandler.SetAvailability)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleStudent), appointmentHandler.CreateAppointment)

			// Logic inside the service differentiates by role
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)

			appointmentRoutes.PATCH("/:id/status",
				middleware.RoleAuthMiddleware(models.RoleCounselor, models.RoleAdmin),
				appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)

			appointmentRoutes.POST("/:id/session-notes",
				middleware.RoleAuthMiddleware(models.RoleCounselor),
				appointmentHandler.CreateSessionNotes)
			appointmentRoutes.GET("/:id/session-notes",
				middleware.RoleAuthMiddleware(models.RoleCounselor, models.RoleAdmin),
				appointmentHandler.GetSessionNotes)
		}

		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkAsRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	return appointmentService
}
