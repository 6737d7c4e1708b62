// handlers_upload.go - Source file management handlers
package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/riv-inspector/backend/internal/storage"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	store        storage.Store
	allowedTypes []string
}

// NewUploadHandler creates a new upload handler instance. allowedTypes is a
// comma-separated extension list; empty allows everything.
func NewUploadHandler(store storage.Store, allowedTypes string) UploadHandler {
	var exts []string
	for _, ext := range strings.Split(allowedTypes, ",") {
		ext = strings.TrimSpace(strings.ToLower(ext))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return &UploadHandlerImpl{store: store, allowedTypes: exts}
}

func (h *UploadHandlerImpl) typeAllowed(name string) bool {
	if len(h.allowedTypes) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range h.allowedTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}

// HandleUploadFile accepts a multipart file upload and saves it to storage.
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("missing form file", err)
	}

	if !h.typeAllowed(fileHeader.Filename) {
		return NewValidationError("file type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to open upload", err)
	}
	defer src.Close()

	info, err := h.store.Save(fileHeader.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleRecentFiles returns a list of recently uploaded files.
func (h *UploadHandlerImpl) HandleRecentFiles(c echo.Context) error {
	files, err := h.store.List(50)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a single file.
func (h *UploadHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile removes a file from storage.
func (h *UploadHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates a file's display name.
func (h *UploadHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}
