package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/HemnathKopula/melody/internal/handlers"
)

func SetupRoutes(
	songHandler *handlers.SongHandler,
	recommendationHandler *handlers.RecommendationHandler,
	ingestHandler *handlers.IngestHandler,
) *gin.Engine {

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if frontendURL := os.Getenv("CORS_ORIGIN"); frontendURL != "" {
		corsConfig.AllowOrigins = []string{frontendURL}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		}
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	api := router.Group("/api")
	{
		songs := api.Group("/songs")
		{
			songs.GET("", songHandler.GetAllSongs)
			songs.GET("/:id", songHandler.GetSongByID)
		}

		api.GET("/recommendations", recommendationHandler.GetRecommendations)
		api.POST("/ingest", ingestHandler.Ingest)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Server is running",
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Melody Recommendation API",
			"version": "1.0.0",
		})
	})

	return router
}
