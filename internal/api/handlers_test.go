package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/riv-inspector/backend/internal/inspect"
	"github.com/riv-inspector/backend/internal/models"
	_ "github.com/riv-inspector/backend/internal/riv/graphfile"
	"github.com/riv-inspector/backend/internal/session"
	"github.com/riv-inspector/backend/internal/storage"
	"github.com/riv-inspector/backend/internal/testutil"
)

const testScene = `{
	"artboards": [
		{"name": "Main", "defaultInstance": "root"}
	],
	"blueprints": [
		{
			"name": "Settings",
			"properties": [{"name": "volume", "type": "number"}],
			"instanceCount": 1
		}
	],
	"instances": [
		{"id": "root", "name": "", "blueprint": "Settings", "values": {"volume": 0.8}}
	]
}`

func newTestHandlers(t *testing.T) (*echo.Echo, *Handlers) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	sessionMgr := session.NewManager("graph", inspect.Options{})

	h := NewHandlers(&Dependencies{
		Store:             store,
		SessionMgr:        sessionMgr,
		Version:           "test",
		AllowedFileTypes:  ".riv,.json",
		AllowFileDeletion: true,
	})
	return e, h
}

func uploadScene(t *testing.T, e *echo.Echo, h *Handlers, name, content string) models.FileInfo {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", name)
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Upload.HandleUploadFile(c); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var info models.FileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}
	return info
}

func TestHealthHandler(t *testing.T) {
	e, h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.Health.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
		assert.Contains(t, rec.Body.String(), `"graph"`)
	}
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	e, h := newTestHandlers(t)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "evil.exe")
	part.Write([]byte("nope"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Upload.HandleUploadFile(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		}
	}
}

func TestFileLifecycle(t *testing.T) {
	e, h := newTestHandlers(t)

	// 1. Upload
	info := uploadScene(t, e, h, "scene.json", testScene)

	// 2. Recent list contains it
	req := httptest.NewRequest(http.MethodGet, "/api/files/recent", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.Upload.HandleRecentFiles(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), info.ID)
	}

	// 3. Rename
	renameBody := bytes.NewBufferString(`{"name":"renamed.json"}`)
	req = httptest.NewRequest(http.MethodPut, "/api/files/"+info.ID, renameBody)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if assert.NoError(t, h.Upload.HandleRenameFile(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"renamed.json"`)
	}

	// 4. Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/files/"+info.ID, nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if assert.NoError(t, h.Upload.HandleDeleteFile(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	// 5. Gone
	req = httptest.NewRequest(http.MethodGet, "/api/files/"+info.ID, nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	err := h.Upload.HandleGetFile(c)
	assert.Error(t, err)
}

func TestInspectFlow(t *testing.T) {
	e, h := newTestHandlers(t)
	info := uploadScene(t, e, h, "scene.json", testScene)

	// 1. Start inspection
	startBody := bytes.NewBufferString(`{"fileId":"` + info.ID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/inspect", startBody)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !assert.NoError(t, h.Inspect.HandleStartInspect(c)) {
		return
	}
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var sess models.InspectSession
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	assert.Equal(t, "graph", sess.Binding)

	// 2. Poll status until complete
	var final models.InspectSession
	for i := 0; i < 50; i++ {
		req = httptest.NewRequest(http.MethodGet, "/api/inspect/"+sess.ID+"/status", nil)
		rec = httptest.NewRecorder()
		c = e.NewContext(req, rec)
		c.SetParamNames("sessionId")
		c.SetParamValues(sess.ID)
		if !assert.NoError(t, h.Inspect.HandleInspectStatus(c)) {
			return
		}
		json.Unmarshal(rec.Body.Bytes(), &final)
		if final.Status == models.SessionStatusComplete || final.Status == models.SessionStatusError {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if final.Status != models.SessionStatusComplete {
		t.Fatalf("Inspection did not complete: %+v", final)
	}
	assert.Equal(t, 1, final.ArtboardCount)
	assert.Equal(t, 1, final.BlueprintCount)

	// 3. Keep-alive
	req = httptest.NewRequest(http.MethodPost, "/api/inspect/"+sess.ID+"/keepalive", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sess.ID)
	if assert.NoError(t, h.Inspect.HandleSessionKeepAlive(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	// 4. Fetch the document as JSON
	req = httptest.NewRequest(http.MethodGet, "/api/inspect/"+sess.ID+"/document", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sess.ID)
	if assert.NoError(t, h.Inspect.HandleGetDocument(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"instanceName":"Instance"`)
		assert.Contains(t, rec.Body.String(), `"blueprintName":"Settings"`)
	}

	// 5. Fetch the document as msgpack and decode it back
	req = httptest.NewRequest(http.MethodGet, "/api/inspect/"+sess.ID+"/document/msgpack", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sess.ID)
	if assert.NoError(t, h.Inspect.HandleGetDocumentMsgpack(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))

		var doc models.Document
		if assert.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &doc)) {
			assert.Len(t, doc.Artboards, 1)
			assert.Equal(t, "Main", doc.Artboards[0].Name)
		}
	}
}

func TestInspectValidation(t *testing.T) {
	e, h := newTestHandlers(t)

	// Missing fileId
	req := httptest.NewRequest(http.MethodPost, "/api/inspect", bytes.NewBufferString(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	assert.Error(t, h.Inspect.HandleStartInspect(c))

	// Unknown file
	req = httptest.NewRequest(http.MethodPost, "/api/inspect", bytes.NewBufferString(`{"fileId":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err := h.Inspect.HandleStartInspect(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusNotFound, apiErr.Status)
		}
	}

	// Unknown session
	req = httptest.NewRequest(http.MethodGet, "/api/inspect/nope/status", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues("nope")
	assert.Error(t, h.Inspect.HandleInspectStatus(c))
}

func TestInspectWithMockStorage(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	mock := testutil.NewMockStorageWithTempDir(t.TempDir())
	sessionMgr := session.NewManager("graph", inspect.Options{})
	h := NewHandlers(&Dependencies{
		Store:      mock,
		SessionMgr: sessionMgr,
		Version:    "test",
	})

	mock.AddFile("file-9", "scene.json", []byte(testScene))

	req := httptest.NewRequest(http.MethodPost, "/api/inspect", bytes.NewBufferString(`{"fileId":"file-9"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !assert.NoError(t, h.Inspect.HandleStartInspect(c)) {
		return
	}
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var sess models.InspectSession
	json.Unmarshal(rec.Body.Bytes(), &sess)

	for i := 0; i < 50; i++ {
		s, ok := sessionMgr.GetSession(sess.ID)
		if !ok {
			t.Fatal("Session not found")
		}
		if s.Status == models.SessionStatusComplete {
			return
		}
		if s.Status == models.SessionStatusError {
			t.Fatalf("Session error: %v", s.Errors)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("Session did not complete in time")
}

func TestDocumentHandlersWithoutArchive(t *testing.T) {
	e, h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/recent", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.Document.HandleRecentDocuments(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/api/documents/search?property=volume", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	assert.Error(t, h.Document.HandleSearchProperties(c))
}

func TestErrorHandlerShapes(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(NewNotFoundError("file", "abc"), c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	ErrorHandler(echo.NewHTTPError(http.StatusTeapot, "short and stout"), c)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"HTTP_ERROR"`)
}
