package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/calmadrigal/space-reservation-backend/internal/auth"
	"github.com/calmadrigal/space-reservation-backend/internal/pkg/storage"
	"github.com/calmadrigal/space-reservation-backend/internal/reservation"
	resHttp "github.com/calmadrigal/space-reservation-backend/internal/reservation/http"
	"github.com/calmadrigal/space-reservation-backend/internal/space"
	spaceHttp "github.com/calmadrigal/space-reservation-backend/internal/space/http"
	"github.com/calmadrigal/space-reservation-backend/internal/user"
	userHttp "github.com/calmadrigal/space-reservation-backend/internal/user/http"
)

// Config holds the services and settings the router wires together.
// SpaceService and Store are nil in the distributed deployment, where
// the spaces catalog lives in its own service.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	SpaceService       space.Service
	ReservationService reservation.Service
	Store              storage.Storage
	JWTManager         *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for
// each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173", // Frontend dev server
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := RequireAdmin()

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	resHandler := resHttp.NewHandler(cfg.ReservationService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		resHttp.RegisterRoutes(v1, resHandler, authMiddleware)

		if cfg.SpaceService != nil {
			spaceHandler := spaceHttp.NewHandler(cfg.SpaceService, cfg.ReservationService, cfg.Store)
			spaceHttp.RegisterRoutes(v1, spaceHandler, authMiddleware, adminMiddleware)
		}
	}

	return r
}
