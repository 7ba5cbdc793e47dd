// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HemnathKopula/melody/internal/config"
	"github.com/HemnathKopula/melody/internal/database"
	"github.com/HemnathKopula/melody/internal/handlers"
	"github.com/HemnathKopula/melody/internal/repository"
	"github.com/HemnathKopula/melody/internal/routes"
	"github.com/HemnathKopula/melody/internal/services"
)

func main() {

	// =========================
	// LOAD CONFIG
	// =========================
	if err := config.LoadConfig(); err != nil {
		log.Println("⚠️ Config load warning:", err)
		log.Println("⚠️ Using environment variables only")
	}

	// =========================
	// CONNECT DATABASE
	// =========================
	db, err := database.ConnectDB()
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// =========================
	// INIT REPOSITORIES
	// =========================
	songRepo := repository.NewSongRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	// =========================
	// INIT SERVICES
	// =========================
	spotifyService := services.NewSpotifyService()

	collaborativeService := services.NewCollaborativeService()
	contentService := services.NewContentBasedService()
	hybridService := services.NewHybridService(contentService, collaborativeService)
	recommenderService := services.NewRecommenderService(
		interactionRepo,
		collaborativeService,
		contentService,
		hybridService,
	)

	ingestService := services.NewIngestService(spotifyService, songRepo, interactionRepo)

	// =========================
	// INIT HANDLERS
	// =========================
	songHandler := handlers.NewSongHandler(songRepo)
	recommendationHandler := handlers.NewRecommendationHandler(recommenderService, songRepo)
	ingestHandler := handlers.NewIngestHandler(ingestService)

	// =========================
	// ROUTES
	// =========================
	router := routes.SetupRoutes(songHandler, recommendationHandler, ingestHandler)

	// =========================
	// PORT
	// =========================
	port := os.Getenv("PORT")
	if port == "" {
		port = config.GlobalConfig.ServerPort
	}
	if port == "" {
		port = "8080"
	}

	bindAddr := "0.0.0.0:" + port

	// =========================
	// SERVER CONFIG
	// =========================
	server := &http.Server{
		Addr:         bindAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// =========================
	// START SERVER
	// =========================
	go func() {
		log.Println("🎵 =======================================")
		log.Println("🎵   MELODY RECOMMENDATION API")
		log.Println("🎵 =======================================")
		log.Printf("🎵   Running on: %s", bindAddr)
		log.Println("🚀 Server started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Println("❌ Server error:", err)
		}
	}()

	// =========================
	// GRACEFUL SHUTDOWN
	// =========================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}

	log.Println("✅ Server exited properly")
}
