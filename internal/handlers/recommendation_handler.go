package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HemnathKopula/melody/internal/models"
	"github.com/HemnathKopula/melody/internal/repository"
	"github.com/HemnathKopula/melody/internal/services"
)

type RecommendationHandler struct {
	recommender services.RecommenderService
	songRepo    repository.SongRepository
}

func NewRecommendationHandler(
	recommender services.RecommenderService,
	songRepo repository.SongRepository,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		songRepo:    songRepo,
	}
}

// GetRecommendations serves GET /api/recommendations. An empty result is a
// 200 with an empty list; only a store failure becomes an error response.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "user_id is required",
		})
		return
	}

	strategy, err := services.ParseStrategy(c.DefaultQuery("type", "hybrid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "type must be one of cf, cbf, hybrid",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}

	songIDs, err := h.recommender.Recommend(userID, strategy, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":  "error",
			"message": "Failed to generate recommendations",
			"error":   err.Error(),
		})
		return
	}

	recommendations, err := h.resolveSongs(songIDs)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Failed to resolve recommended songs",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Recommendations fetched",
		"data": gin.H{
			"user_id":         userID,
			"type":            strategy,
			"recommendations": recommendations,
			"count":           len(recommendations),
		},
	})
}

// resolveSongs maps ranked song ids to catalog metadata, keeping the
// engine's order.
func (h *RecommendationHandler) resolveSongs(songIDs []string) ([]models.RecommendedSong, error) {
	songs, err := h.songRepo.GetSongsByIDs(songIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}

	recommendations := make([]models.RecommendedSong, 0, len(songIDs))
	for _, id := range songIDs {
		song, ok := byID[id]
		if !ok {
			continue
		}
		recommendations = append(recommendations, models.RecommendedSong{
			Rank: len(recommendations) + 1,
			Song: song,
		})
	}
	return recommendations, nil
}
