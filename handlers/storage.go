package handlers

import (
	"github.com/gabrielbaute/octopus-photos/utils"

	"github.com/gin-gonic/gin"
)

func GetStorageUsage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	usage, err := appServices.Storage.GetUsage(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, usage)
}

func ReconcileStorage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	usage, err := appServices.Storage.SyncWithDisk(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, usage)
}
