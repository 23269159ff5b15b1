package handlers

import (
	"github.com/gabrielbaute/octopus-photos/utils"

	"github.com/gin-gonic/gin"
)

func ListMemories(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	memories, err := appServices.Memories.ListMemories(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, memories)
}
