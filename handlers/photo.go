package handlers

import (
	"net/http"
	"strconv"

	"github.com/gabrielbaute/octopus-photos/services"
	"github.com/gabrielbaute/octopus-photos/utils"

	"github.com/gin-gonic/gin"
)

func UploadPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "failed to open uploaded file")
		return
	}
	defer src.Close()

	photo, err := appServices.Photos.Upload(c.Request.Context(), services.UploadPhotoInput{
		ActorID:     userID,
		FileName:    fileHeader.Filename,
		Reader:      src,
		Size:        fileHeader.Size,
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, photo)
}

func listPhotos(c *gin.Context, onlyTrashed bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	photos, total, err := appServices.Photos.List(c.Request.Context(), services.ListPhotosQuery{
		ActorID:     userID,
		OnlyTrashed: onlyTrashed,
		SortBy:      c.Query("sort_by"),
		Order:       c.Query("order"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"photos":     photos,
		"pagination": utils.NewPaginationData(page, pageSize, total),
	})
}

func ListPhotos(c *gin.Context) {
	listPhotos(c, false)
}

func ListTrash(c *gin.Context) {
	listPhotos(c, true)
}

func GetPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	photo, err := appServices.Photos.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, photo)
}

func DownloadPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	info, err := appServices.Photos.GetDownloadInfo(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Type", info.MimeType)
	c.FileAttachment(info.AbsolutePath, info.FileName)
}

func GetThumbnail(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	info, err := appServices.Photos.GetThumbnailInfo(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Type", info.MimeType)
	c.File(info.AbsolutePath)
}

type updatePhotoRequest struct {
	Description *string `json:"description"`
	Tags        *string `json:"tags"`
}

func UpdatePhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req updatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	err := appServices.Photos.UpdateDetails(c.Request.Context(), services.UpdatePhotoInput{
		ActorID:     userID,
		PhotoID:     c.Param("id"),
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

func TrashPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := appServices.Photos.Trash(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

func RestorePhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := appServices.Photos.Restore(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

func PurgePhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := appServices.Photos.Purge(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}
