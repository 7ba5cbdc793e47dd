package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HemnathKopula/melody/internal/repository"
	"github.com/HemnathKopula/melody/internal/services"
)

type IngestHandler struct {
	ingest services.IngestService
}

func NewIngestHandler(ingest services.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// Ingest serves POST /api/ingest: it pulls the user's listening data from the
// catalog API and stores the interaction rows the engine reads.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "user_id and access_token are required",
		})
		return
	}

	summary, err := h.ingest.IngestUserData(req.UserID, req.AccessToken)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, repository.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":  "error",
			"message": "Ingestion failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User data stored",
		"data":    summary,
	})
}
