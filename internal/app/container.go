package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calmadrigal/space-reservation-backend/internal/api"
	"github.com/calmadrigal/space-reservation-backend/internal/auth"
	"github.com/calmadrigal/space-reservation-backend/internal/config"
	"github.com/calmadrigal/space-reservation-backend/internal/pkg/storage"
	"github.com/calmadrigal/space-reservation-backend/internal/reservation"
	"github.com/calmadrigal/space-reservation-backend/internal/space"
	"github.com/calmadrigal/space-reservation-backend/internal/user"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
// The spaces mode decides whether the spaces catalog is served locally
// or resolved from a remote spaces service.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	// User Module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher)

	// Space Module: local catalog or remote resolver.
	var resolver space.Resolver
	var spaceService space.Service
	var store storage.Storage
	if cfg.SpacesMode == config.SpacesModeLocal {
		spaceRepo := space.NewPgxRepository(pool)
		spaceService = space.NewService(spaceRepo, cfg.DefaultSpaceName)
		resolver = spaceService

		local, err := storage.NewLocalStorage(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init storage failed: %w", err)
		}
		store = local
	} else {
		resolver = space.NewRemoteResolver(cfg.SpacesBaseURL, cfg.SpacesTimeout)
	}

	// Reservation Module
	resRepo := reservation.NewPgxRepository(pool)
	resService := reservation.NewService(resRepo, resolver, cfg.ReservationMinDuration, cfg.ReservationMaxDuration)

	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		SpaceService:       spaceService,
		ReservationService: resService,
		Store:              store,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
