// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// UploadHandler handles source-file upload operations
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// InspectHandler handles inspect session operations
type InspectHandler interface {
	HandleStartInspect(c echo.Context) error
	HandleInspectStatus(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleGetDocument(c echo.Context) error
	HandleGetDocumentMsgpack(c echo.Context) error
}

// DocumentHandler handles the cross-session document archive
type DocumentHandler interface {
	HandleRecentDocuments(c echo.Context) error
	HandleGetArchivedDocument(c echo.Context) error
	HandleSearchProperties(c echo.Context) error
}

// HealthHandler handles health checks
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
