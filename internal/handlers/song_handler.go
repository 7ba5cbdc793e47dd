package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HemnathKopula/melody/internal/repository"
)

type SongHandler struct {
	songRepo repository.SongRepository
}

func NewSongHandler(songRepo repository.SongRepository) *SongHandler {
	return &SongHandler{songRepo: songRepo}
}

func (h *SongHandler) GetAllSongs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	songs, err := h.songRepo.GetAllSongs(limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Failed to fetch songs",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Songs fetched",
		"data": gin.H{
			"songs": songs,
			"count": len(songs),
		},
	})
}

func (h *SongHandler) GetSongByID(c *gin.Context) {
	song, err := h.songRepo.GetSongByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Failed to fetch song",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song fetched",
		"data":    song,
	})
}
