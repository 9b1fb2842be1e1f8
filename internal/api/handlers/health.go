package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
)

// Health reports service liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy"})
}
