package handlers

import (
	"errors"
	"net/http"
	"strings"

	"nestmart/services/storage"
	"nestmart/utils"

	"github.com/gin-gonic/gin"
)

// maxUploadSize caps a single listing image.
const maxUploadSize = 10 << 20

// StorageHandler handles listing image uploads.
type StorageHandler struct {
	StorageSvc storage.StorageService
}

// NewStorageHandler creates a StorageHandler. svc may be nil when uploads
// are not configured.
func NewStorageHandler(svc storage.StorageService) *StorageHandler {
	return &StorageHandler{StorageSvc: svc}
}

// UploadFileHandler handles POST /upload with a multipart "file" field.
func (h *StorageHandler) UploadFileHandler(c *gin.Context) {
	logger := getLogger(c)
	if h.StorageSvc == nil {
		utils.JSONError(c, logger, http.StatusServiceUnavailable, "uploads are not configured", "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "file not provided", err.Error())
		return
	}
	if fileHeader.Size > maxUploadSize {
		utils.JSONError(c, logger, http.StatusRequestEntityTooLarge, "file too large", "")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "failed to read file", err.Error())
		return
	}
	defer file.Close()

	asset, err := h.StorageSvc.Upload(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		utils.JSONError(c, logger, http.StatusBadGateway, "failed to upload file", err.Error())
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// DeleteFileHandler handles DELETE /upload/*publicId.
func (h *StorageHandler) DeleteFileHandler(c *gin.Context) {
	logger := getLogger(c)
	if h.StorageSvc == nil {
		utils.JSONError(c, logger, http.StatusServiceUnavailable, "uploads are not configured", "")
		return
	}

	publicID := strings.TrimPrefix(c.Param("publicId"), "/")
	if publicID == "" {
		utils.JSONError(c, logger, http.StatusBadRequest, "publicId is required", "")
		return
	}

	if err := h.StorageSvc.Delete(c.Request.Context(), publicID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.JSONError(c, logger, http.StatusNotFound, "file not found", publicID)
			return
		}
		utils.JSONError(c, logger, http.StatusBadGateway, "failed to delete file", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
