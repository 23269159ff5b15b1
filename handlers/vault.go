package handlers

import (
	"net/http"

	"github.com/gabrielbaute/octopus-photos/utils"

	"github.com/gin-gonic/gin"
)

type passphraseRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
}

func bindPassphrase(c *gin.Context) (string, bool) {
	var req passphraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "passphrase is required")
		return "", false
	}
	return req.Passphrase, true
}

func LockPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	passphrase, ok := bindPassphrase(c)
	if !ok {
		return
	}
	if err := appServices.Vault.Lock(c.Request.Context(), userID, c.Param("id"), passphrase); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

func UnlockPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	passphrase, ok := bindPassphrase(c)
	if !ok {
		return
	}
	stream, err := appServices.Vault.Unlock(c.Request.Context(), userID, c.Param("id"), passphrase)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.DataFromReader(http.StatusOK, stream.Size, stream.MimeType, stream.Reader, map[string]string{
		"Content-Disposition": `attachment; filename="` + stream.FileName + `"`,
	})
}

func UnlockThumbnail(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	passphrase, ok := bindPassphrase(c)
	if !ok {
		return
	}
	stream, err := appServices.Vault.UnlockThumbnail(c.Request.Context(), userID, c.Param("id"), passphrase)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.DataFromReader(http.StatusOK, stream.Size, stream.MimeType, stream.Reader, nil)
}
