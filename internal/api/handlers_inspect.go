// handlers_inspect.go - Inspect session operation handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/riv-inspector/backend/internal/inspect"
	"github.com/riv-inspector/backend/internal/session"
	"github.com/riv-inspector/backend/internal/storage"
)

// InspectHandlerImpl implements the InspectHandler interface
type InspectHandlerImpl struct {
	store      storage.Store
	sessionMgr *session.Manager
}

// NewInspectHandler creates a new inspect handler instance
func NewInspectHandler(store storage.Store, sessionMgr *session.Manager) InspectHandler {
	return &InspectHandlerImpl{
		store:      store,
		sessionMgr: sessionMgr,
	}
}

type startInspectRequest struct {
	FileID                  string `json:"fileId"`
	Binding                 string `json:"binding,omitempty"`
	CalibrationArtboard     string `json:"calibrationArtboard,omitempty"`
	CalibrationStateMachine string `json:"calibrationStateMachine,omitempty"`
}

// HandleStartInspect starts a new inspect session for an uploaded file
func (h *InspectHandlerImpl) HandleStartInspect(c echo.Context) error {
	var req startInspectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}
	filePath, err := h.store.GetFilePath(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	var opts *inspect.Options
	if req.CalibrationArtboard != "" || req.CalibrationStateMachine != "" {
		opts = &inspect.Options{
			CalibrationArtboard:     req.CalibrationArtboard,
			CalibrationStateMachine: req.CalibrationStateMachine,
		}
	}

	sess, err := h.sessionMgr.StartSession(req.FileID, info.Name, filePath, req.Binding, opts)
	if err != nil {
		return NewInternalError("failed to start session", err)
	}

	return c.JSON(http.StatusAccepted, sess)
}

// HandleInspectStatus returns the current status of an inspect session
func (h *InspectHandlerImpl) HandleInspectStatus(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	// Touch session to prevent cleanup while being viewed
	h.sessionMgr.TouchSession(id)

	return c.JSON(http.StatusOK, sess)
}

// HandleSessionKeepAlive extends session lifetime for active viewing
func (h *InspectHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if ok := h.sessionMgr.TouchSession(id); !ok {
		return NewNotFoundError("session", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleGetDocument returns the completed document as JSON
func (h *InspectHandlerImpl) HandleGetDocument(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	doc, ok := h.sessionMgr.GetDocument(id)
	if !ok {
		return NewNotFoundError("document", id)
	}

	h.sessionMgr.TouchSession(id)

	return c.JSON(http.StatusOK, doc)
}

// HandleGetDocumentMsgpack returns the completed document in MessagePack format
func (h *InspectHandlerImpl) HandleGetDocumentMsgpack(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	doc, ok := h.sessionMgr.GetDocument(id)
	if !ok {
		return NewNotFoundError("document", id)
	}

	h.sessionMgr.TouchSession(id)

	data, err := msgpack.Marshal(doc)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}
