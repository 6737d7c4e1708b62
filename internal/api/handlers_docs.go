// handlers_docs.go - Cross-session document archive handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/riv-inspector/backend/internal/docstore"
)

// DocumentHandlerImpl implements the DocumentHandler interface. archive may
// be nil when persistence is disabled.
type DocumentHandlerImpl struct {
	archive *docstore.Store
}

// NewDocumentHandler creates a new document archive handler instance
func NewDocumentHandler(archive *docstore.Store) DocumentHandler {
	return &DocumentHandlerImpl{archive: archive}
}

// HandleRecentDocuments lists the most recently archived documents
func (h *DocumentHandlerImpl) HandleRecentDocuments(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("document archive is disabled")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 20
	}

	records, err := h.archive.Recent(limit)
	if err != nil {
		return NewInternalError("failed to list documents", err)
	}

	return c.JSON(http.StatusOK, records)
}

// HandleGetArchivedDocument returns one archived document by session ID
func (h *DocumentHandlerImpl) HandleGetArchivedDocument(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("document archive is disabled")
	}

	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	doc, err := h.archive.Get(id)
	if err != nil {
		return NewNotFoundError("document", id)
	}

	return c.JSON(http.StatusOK, doc)
}

// HandleSearchProperties finds blueprint properties by name across all
// archived documents
func (h *DocumentHandlerImpl) HandleSearchProperties(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("document archive is disabled")
	}

	name := c.QueryParam("property")
	if name == "" {
		return NewValidationError("property")
	}

	hits, err := h.archive.SearchByProperty(name)
	if err != nil {
		return NewInternalError("failed to search properties", err)
	}

	return c.JSON(http.StatusOK, hits)
}
