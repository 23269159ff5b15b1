package handlers

import (
	"github.com/gabrielbaute/octopus-photos/utils"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	utils.Success(c, gin.H{"status": "ok"})
}
