package handlers

import (
	"errors"
	"net/http"

	"github.com/gabrielbaute/octopus-photos/middleware"
	"github.com/gabrielbaute/octopus-photos/services"
	"github.com/gabrielbaute/octopus-photos/utils"

	"github.com/gin-gonic/gin"
)

var appServices *services.Container

func SetServices(s *services.Container) {
	appServices = s
}

func respondServiceError(c *gin.Context, err error) {
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		if appErr.Data != nil {
			utils.ErrorWithData(c, appErr.HTTPCode, appErr.Message, appErr.Data)
			return
		}
		utils.Error(c, appErr.HTTPCode, appErr.Message)
		return
	}
	utils.Error(c, http.StatusInternalServerError, "internal server error")
}

func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "not authenticated")
	}
	return userID, ok
}
