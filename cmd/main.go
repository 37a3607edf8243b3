package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/endpoints"
	"github.com/manarouei/agent-skills-sub004/internal/api/models"
	"github.com/manarouei/agent-skills-sub004/internal/api/service"
	"github.com/manarouei/agent-skills-sub004/internal/gen"
)

func main() {
	skills.InitConfig(".env")
	cfg := skills.GetConfig()
	gin.SetMode(gin.ReleaseMode)
	if cfg.Mode == "dev" {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := skills.ConnectDatabase(); err != nil {
		skills.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if skills.DB != nil {
		if err := skills.DB.AutoMigrate(
			&models.ConversionRun{},
			&models.Workflow{},
			&models.Credential{},
		); err != nil {
			skills.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		skills.Logger.Info().Msg("Database migrated successfully")
	}
	if err := skills.ConnectRedis(ctx); err != nil {
		skills.Logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}

	var overrides *gen.Overrides
	if cfg.OverridesFile != "" {
		var err error
		if overrides, err = gen.LoadOverrides(cfg.OverridesFile); err != nil {
			skills.Logger.Fatal().Err(err).Msg("Failed to load overrides")
		}
		skills.Logger.Info().Int("version", overrides.Version).Int("nodes", len(overrides.Nodes)).Msg("Overrides loaded")
	}

	router, err := graceful.Default(graceful.WithAddr(cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	runService := service.NewRunService(ctx, overrides)
	defer runService.Close()

	initAPI(router, service.NewConvertService(overrides), runService)

	skills.Logger.Debug().Msgf("Starting codeconvert API on port %s", cfg.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		skills.Logger.Fatal().Msg(err.Error())
	}
}

func initAPI(router *graceful.Graceful, convertService *service.ConvertService, runService *service.RunService) {
	endpoints.AuthHandler(router)
	endpoints.ConvertHandler(router, convertService, runService)
}
