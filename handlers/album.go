package handlers

import (
	"net/http"

	"github.com/gabrielbaute/octopus-photos/utils"

	"github.com/gin-gonic/gin"
)

type albumRequest struct {
	Name string `json:"name" binding:"required"`
}

func CreateAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "album name is required")
		return
	}
	album, err := appServices.Albums.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, album)
}

func GetAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	album, err := appServices.Albums.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, album)
}

func ListAlbums(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	albums, err := appServices.Albums.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, albums)
}

func RenameAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "album name is required")
		return
	}
	if err := appServices.Albums.Rename(c.Request.Context(), userID, c.Param("id"), req.Name); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

func DeleteAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := appServices.Albums.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

func AddPhotoToAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := appServices.Albums.AddPhoto(c.Request.Context(), userID, c.Param("id"), c.Param("photoId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

func RemovePhotoFromAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := appServices.Albums.RemovePhoto(c.Request.Context(), userID, c.Param("id"), c.Param("photoId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}
