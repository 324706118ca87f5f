package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"movie-night-backend/config"
	"movie-night-backend/controllers"
	"movie-night-backend/data_access"
	"movie-night-backend/helper"
	"movie-night-backend/logger"
	"movie-night-backend/middleware"
	"movie-night-backend/scheduler"
	"movie-night-backend/services"
)

func setupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func main() {
	seed := flag.Bool("seed", false, "seed the movie catalog from the CSV export and exit")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLog.Sync()

	// Initialize MongoDB connection
	mongodb, err := data_access.NewMongoDB(cfg.MongoURI, cfg.DBName)
	if err != nil {
		appLog.Fatal("failed to connect to MongoDB", "error", err)
	}
	defer mongodb.Close(context.Background())

	if err := mongodb.EnsureIndexes(context.Background()); err != nil {
		appLog.Fatal("failed to create indexes", "error", err)
	}

	// Initialize repositories
	userRepo := data_access.NewUserRepository(mongodb)
	movieRepo := data_access.NewMovieRepository(mongodb)
	groupRepo := data_access.NewGroupRepository(mongodb)
	rankingRepo := data_access.NewRankingRepository(mongodb)
	invitationRepo := data_access.NewInvitationRepository(mongodb)

	if *seed {
		inserted, err := helper.SeedMovies(context.Background(), movieRepo, cfg.MovieSeedCSVPath)
		if err != nil {
			appLog.Fatal("failed to seed movie catalog", "error", err)
		}
		appLog.Info("movie catalog seeded", "inserted", inserted)

		created, err := helper.SeedUsers(context.Background(), userRepo, cfg.SeedUsernames)
		if err != nil {
			appLog.Fatal("failed to seed users", "error", err)
		}
		appLog.Info("users seeded", "created", created)
		return
	}

	// Set JWT secret for middleware
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize services
	phaseService := services.NewPhaseService(groupRepo, appLog)
	groupService := services.NewGroupService(groupRepo, userRepo, invitationRepo,
		cfg.DefaultPoolPhaseDurationSeconds, cfg.DefaultVotingPhaseDurationSeconds, appLog)
	poolService := services.NewPoolService(phaseService, groupRepo, movieRepo, appLog)
	rankingService := services.NewRankingService(phaseService, groupRepo, movieRepo, userRepo, rankingRepo, appLog)

	// Initialize controllers
	groupController := controllers.NewGroupController(groupService, phaseService)
	poolController := controllers.NewPoolController(poolService)
	rankingController := controllers.NewRankingController(rankingService)

	// Periodic winner computation for groups that reached RESULTS
	resultsScheduler := scheduler.NewResultsScheduler(rankingService, cfg.ResultsCheckInterval, appLog)
	resultsScheduler.Start()
	defer resultsScheduler.Stop()

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(setupCORS())
	r.Use(middleware.RequestID(appLog))

	// Health check endpoint
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/groups", groupController.CreateGroup)
		protected.GET("/groups/:groupId", groupController.GetGroup)
		protected.DELETE("/groups/:groupId/members/me", groupController.LeaveGroup)

		protected.POST("/groups/:groupId/invitations", groupController.InviteUser)
		protected.GET("/invitations", groupController.ListInvitations)
		protected.PUT("/invitations/:invitationId", groupController.RespondToInvitation)

		protected.POST("/groups/:groupId/phase", groupController.AdvancePhase)
		protected.PUT("/groups/:groupId/timers", groupController.UpdateTimers)
		protected.GET("/groups/:groupId/timer", groupController.GetRemainingTime)

		protected.POST("/groups/:groupId/pool", poolController.AddMovie)
		protected.DELETE("/groups/:groupId/pool/:movieId", poolController.RemoveMovie)
		protected.GET("/groups/:groupId/pool", poolController.ListMovies)

		protected.POST("/groups/:groupId/rankings", rankingController.SubmitRankings)
		protected.GET("/groups/:groupId/rankings/me", rankingController.GetUserRankings)
		protected.GET("/groups/:groupId/results", rankingController.GetResults)
	}

	appLog.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("server stopped", "error", err)
	}
}
