// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/riv-inspector/backend/internal/docstore"
	"github.com/riv-inspector/backend/internal/riv"
	"github.com/riv-inspector/backend/internal/session"
	"github.com/riv-inspector/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	SessionMgr        *session.Manager
	Archive           *docstore.Store // nil when persistence is disabled
	Registry          *riv.Registry
	Version           string
	AllowedFileTypes  string
	AllowFileDeletion bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Upload   UploadHandler
	Inspect  InspectHandler
	Document DocumentHandler

	allowFileDeletion bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	registry := deps.Registry
	if registry == nil {
		registry = riv.GetGlobalRegistry()
	}
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, registry),
		Upload:   NewUploadHandler(deps.Store, deps.AllowedFileTypes),
		Inspect:  NewInspectHandler(deps.Store, deps.SessionMgr),
		Document: NewDocumentHandler(deps.Archive),

		allowFileDeletion: deps.AllowFileDeletion,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// File management routes
	fileGroup := e.Group("/api/files")
	fileGroup.POST("/upload", handlers.Upload.HandleUploadFile)
	fileGroup.GET("/recent", handlers.Upload.HandleRecentFiles)
	fileGroup.GET("/:id", handlers.Upload.HandleGetFile)
	fileGroup.PUT("/:id", handlers.Upload.HandleRenameFile)
	if handlers.allowFileDeletion {
		fileGroup.DELETE("/:id", handlers.Upload.HandleDeleteFile)
	}

	// Inspect session routes
	inspectGroup := e.Group("/api/inspect")
	inspectGroup.POST("", handlers.Inspect.HandleStartInspect)
	inspectGroup.GET("/:sessionId/status", handlers.Inspect.HandleInspectStatus)
	inspectGroup.POST("/:sessionId/keepalive", handlers.Inspect.HandleSessionKeepAlive)
	inspectGroup.GET("/:sessionId/document", handlers.Inspect.HandleGetDocument)
	inspectGroup.GET("/:sessionId/document/msgpack", handlers.Inspect.HandleGetDocumentMsgpack)

	// Document archive routes
	docGroup := e.Group("/api/documents")
	docGroup.GET("/recent", handlers.Document.HandleRecentDocuments)
	docGroup.GET("/search", handlers.Document.HandleSearchProperties)
	docGroup.GET("/:sessionId", handlers.Document.HandleGetArchivedDocument)
}
