package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	SpotifyClientID     string
	SpotifyClientSecret string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string

	// Hybrid blend weights. Both strategies contribute ranked candidates;
	// these decide how much each rank position is worth in the merged result.
	ContentWeight       float64
	CollaborativeWeight float64

	// Latent-factor model hyperparameters (SGD-trained SVD).
	CFFactors        int
	CFEpochs         int
	CFLearningRate   float64
	CFRegularization float64
}

var GlobalConfig *Config

func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	contentWeight, _ := strconv.ParseFloat(getEnv("CONTENT_WEIGHT", "0.5"), 64)
	collaborativeWeight, _ := strconv.ParseFloat(getEnv("COLLABORATIVE_WEIGHT", "0.5"), 64)

	cfFactors, _ := strconv.Atoi(getEnv("CF_FACTORS", "100"))
	cfEpochs, _ := strconv.Atoi(getEnv("CF_EPOCHS", "20"))
	cfLearningRate, _ := strconv.ParseFloat(getEnv("CF_LEARNING_RATE", "0.005"), 64)
	cfRegularization, _ := strconv.ParseFloat(getEnv("CF_REGULARIZATION", "0.02"), 64)

	GlobalConfig = &Config{
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "melody"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		ContentWeight:       contentWeight,
		CollaborativeWeight: collaborativeWeight,

		CFFactors:        cfFactors,
		CFEpochs:         cfEpochs,
		CFLearningRate:   cfLearningRate,
		CFRegularization: cfRegularization,
	}

	if GlobalConfig.SpotifyClientID == "" || GlobalConfig.SpotifyClientSecret == "" {
		log.Println("⚠️ Spotify API credentials not set, catalog ingestion disabled")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
