// routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"safetrip/config"
	"safetrip/controllers"
	"safetrip/interfaces"
	"safetrip/middleware"
	"safetrip/repositories"
	"safetrip/services"
	"safetrip/utils"
	"safetrip/websocket"
)

// SetupRoutes initializes the dependency graph and all application
// routes. The returned Services are shared with the background workers.
func SetupRoutes(cfg *config.Config, db *mongo.Database, redisClient *redis.Client, hub *websocket.Hub, clock utils.Clock) (*gin.Engine, *Services) {
	router := gin.New()

	repos := initializeRepositories(db)
	svcs := initializeServices(cfg, repos, redisClient, hub, clock)
	ctrls := initializeControllers(svcs, hub, redisClient)

	setupGlobalMiddleware(router, cfg, redisClient)

	setupPublicRoutes(router, ctrls)
	setupAuthenticatedRoutes(router, ctrls, svcs.Auth)

	return router, svcs
}

// Repositories initialization
type Repositories struct {
	SOS          *repositories.SOSRepository
	CheckIn      *repositories.CheckInRepository
	Contact      *repositories.ContactRepository
	Notification *repositories.NotificationRepository
	Settings     *repositories.SettingsRepository
}

func initializeRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		SOS:          repositories.NewSOSRepository(db),
		CheckIn:      repositories.NewCheckInRepository(db),
		Contact:      repositories.NewContactRepository(db),
		Notification: repositories.NewNotificationRepository(db),
		Settings:     repositories.NewSettingsRepository(db),
	}
}

// Services initialization
type Services struct {
	Auth         *middleware.AuthMiddleware
	Location     *services.LocationService
	Notification *services.NotificationService
	CheckIn      *services.CheckInService
	SOS          *services.SOSService
	Contact      *services.ContactService
	Settings     *services.SettingsService
	Dispatch     *services.DispatchService
	Push         *services.PushService

	SettingsStore interfaces.SettingsStore
}

func initializeServices(cfg *config.Config, repos *Repositories, redisClient *redis.Client, hub *websocket.Hub, clock utils.Clock) *Services {
	gateway, err := utils.NewMessagingGateway(cfg.FirebaseCredentials, cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	if err != nil {
		// Run without external channels rather than refuse to start.
		gateway, _ = utils.NewMessagingGateway("", "", "", "")
	}

	jwtService := utils.NewJWTService(cfg.JWTSecret)
	locationService := services.NewLocationService(redisClient, clock)
	pushService := services.NewPushService(redisClient, gateway)
	dispatchService := services.NewDispatchService(gateway)
	notificationService := services.NewNotificationService(repos.Notification, repos.Settings, hub, pushService, clock)
	checkInService := services.NewCheckInService(repos.CheckIn, repos.Settings, locationService, notificationService, clock)
	contactService := services.NewContactService(repos.Contact, clock)
	sosService := services.NewSOSService(repos.SOS, repos.Settings, locationService, contactService, dispatchService, notificationService, hub, clock)
	settingsService := services.NewSettingsService(repos.Settings, checkInService, clock)

	return &Services{
		Auth:         middleware.NewAuthMiddleware(jwtService),
		Location:     locationService,
		Notification: notificationService,
		CheckIn:      checkInService,
		SOS:          sosService,
		Contact:      contactService,
		Settings:     settingsService,
		Dispatch:     dispatchService,
		Push:         pushService,

		SettingsStore: repos.Settings,
	}
}

// Controllers initialization
type Controllers struct {
	SOS          *controllers.SOSController
	CheckIn      *controllers.CheckInController
	Notification *controllers.NotificationController
	Contact      *controllers.ContactController
	Settings     *controllers.SettingsController
	Location     *controllers.LocationController
	WebSocket    *controllers.WebSocketController
	Health       *controllers.HealthController
}

func initializeControllers(svcs *Services, hub *websocket.Hub, redisClient *redis.Client) *Controllers {
	return &Controllers{
		SOS:          controllers.NewSOSController(svcs.SOS),
		CheckIn:      controllers.NewCheckInController(svcs.CheckIn),
		Notification: controllers.NewNotificationController(svcs.Notification),
		Contact:      controllers.NewContactController(svcs.Contact),
		Settings:     controllers.NewSettingsController(svcs.Settings, svcs.Push),
		Location:     controllers.NewLocationController(svcs.Location),
		WebSocket:    controllers.NewWebSocketController(hub, svcs.Auth),
		Health:       controllers.NewHealthController(redisClient, hub, "1.0.0"),
	}
}

// Global middleware setup
func setupGlobalMiddleware(router *gin.Engine, cfg *config.Config, redisClient *redis.Client) {
	errorHandler := middleware.NewErrorHandler(cfg.Environment, logrus.StandardLogger())

	router.Use(gin.Recovery())
	router.Use(middleware.DefaultLoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Environment))
	router.Use(errorHandler.Handle())

	rateLimiter := middleware.NewRateLimiterMiddleware(middleware.RateLimitConfig{
		Redis:     redisClient,
		Requests:  cfg.RateLimitRequest,
		Window:    time.Duration(cfg.RateLimitWindow) * time.Minute,
		SkipPaths: []string{"/health"},
	})
	router.Use(rateLimiter.Middleware())
}

// Public routes (no authentication required)
func setupPublicRoutes(router *gin.Engine, ctrls *Controllers) {
	router.GET("/health", ctrls.Health.Health)
}

// Authenticated routes under /api/v1
func setupAuthenticatedRoutes(router *gin.Engine, ctrls *Controllers, auth *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")
	v1.Use(auth.RequireAuth())

	SetupSOSRoutes(v1, ctrls.SOS)
	SetupCheckInRoutes(v1, ctrls.CheckIn)
	SetupNotificationRoutes(v1, ctrls.Notification)
	SetupContactRoutes(v1, ctrls.Contact)
	SetupSettingsRoutes(v1, ctrls.Settings)
	SetupLocationRoutes(v1, ctrls.Location)

	// The upgrade request authenticates itself with a query token.
	router.GET("/ws", ctrls.WebSocket.HandleWebSocket)
}
