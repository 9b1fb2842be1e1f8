package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/application/service"
)

// FilesHandler handles statement uploads and file listing
type FilesHandler struct {
	uploads *service.UploadService
}

// NewFilesHandler creates a files handler
func NewFilesHandler(uploads *service.UploadService) *FilesHandler {
	return &FilesHandler{uploads: uploads}
}

// Upload accepts a multipart statement file. Re-uploading identical
// content returns the original file with duplicate=true instead of an
// error.
func (h *FilesHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("multipart field 'file' is required"))
		return
	}

	opened, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("could not read uploaded file"))
		return
	}
	defer func() { _ = opened.Close() }()

	content, err := io.ReadAll(opened)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("could not read uploaded file"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	result, err := h.uploads.SaveUpload(middleware.UserID(c), header.Filename, mimeType, content)
	if err != nil {
		RespondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}

	c.JSON(status, dto.UploadResponse{
		File:      result.File,
		Duplicate: result.Duplicate,
		Schema:    result.Schema,
	})
}

// List returns the user's uploaded files, newest first
func (h *FilesHandler) List(c *gin.Context) {
	limit := ParseIntQuery(c, "limit", 50)

	files, err := h.uploads.ListFiles(middleware.UserID(c), limit)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// GetSchema returns the detected schema of an uploaded file
func (h *FilesHandler) GetSchema(c *gin.Context) {
	schema, err := h.uploads.GetSchema(middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schema)
}
