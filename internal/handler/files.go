package handler

import (
	"errors"
	"net/http"
	"os"
	"path"

	"github.com/as0628/expense-tracker-project/internal/storage"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// FileHandler 提供本地存储的报表下载，需带签名 token
type FileHandler struct {
	Store *storage.Local
}

func (h *FileHandler) Download(c *gin.Context) {
	key := c.Param("key")

	p, err := h.Store.Open(key, c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidKey):
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid file key")
		case errors.Is(err, storage.ErrInvalidToken):
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "Link is invalid or has expired")
		case errors.Is(err, os.ErrNotExist):
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "File not found")
		default:
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to read file")
		}
		return
	}

	c.FileAttachment(p, path.Base(key))
}
