package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const healthMessage = "All healthy here!"

// HealthHandler answers GET /health_check.
// @Summary     Health check
// @Description Returns the health status of the API
// @Tags        health
// @Produce     json
// @Success     200 {string} string "All healthy here!"
// @Router      /health_check [get]
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, healthMessage)
}
