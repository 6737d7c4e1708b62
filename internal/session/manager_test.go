package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riv-inspector/backend/internal/inspect"
	"github.com/riv-inspector/backend/internal/models"
	_ "github.com/riv-inspector/backend/internal/riv/graphfile"
)

const testGraph = `{
	"activeArtboard": "Main",
	"artboards": [
		{
			"name": "Main",
			"defaultInstance": "root",
			"stateMachines": [
				{"name": "SM1", "rawInputs": [{"name": "Active", "typeCode": 59}]}
			]
		}
	],
	"enums": [{"name": "Mode", "values": ["light", "dark"]}],
	"blueprints": [
		{
			"name": "Settings",
			"properties": [
				{"name": "volume", "type": "number"},
				{"name": "label", "type": "string"}
			],
			"instanceCount": 1
		}
	],
	"instances": [
		{"id": "root", "name": "", "blueprint": "Settings", "values": {"volume": 0.8, "label": "hello"}}
	],
	"assets": [{"name": "logo.png", "cdnUuid": "u-1"}]
}`

func writeTestGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(testGraph), 0644); err != nil {
		t.Fatalf("Failed to write test graph: %v", err)
	}
	return path
}

func waitForSession(t *testing.T, m *Manager, id string) *models.InspectSession {
	t.Helper()
	for i := 0; i < 50; i++ {
		s, ok := m.GetSession(id)
		if !ok {
			t.Fatalf("Session not found")
		}
		if s.Status == models.SessionStatusComplete || s.Status == models.SessionStatusError {
			return s
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("Session did not finish in time")
	return nil
}

func TestSessionManager(t *testing.T) {
	path := writeTestGraph(t)
	m := NewManager("graph", inspect.Options{})

	sess, err := m.StartSession("file-1", "scene.json", path, "", nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if sess.Binding != "graph" {
		t.Errorf("Expected default binding graph, got %q", sess.Binding)
	}

	s := waitForSession(t, m, sess.ID)
	if s.Status != models.SessionStatusComplete {
		t.Fatalf("Session failed: %v", s.Errors)
	}
	if s.ArtboardCount != 1 || s.BlueprintCount != 1 || s.EnumCount != 1 || s.AssetCount != 1 {
		t.Errorf("Unexpected counts: %+v", s)
	}

	doc, ok := m.GetDocument(sess.ID)
	if !ok {
		t.Fatal("Expected completed document")
	}
	if len(doc.Artboards) != 1 || doc.Artboards[0].Name != "Main" {
		t.Errorf("Unexpected document: %+v", doc.Artboards)
	}
	vms := doc.Artboards[0].ViewModels
	if len(vms) != 1 || vms[0].InstanceName != "Instance" {
		t.Errorf("Expected resolved default instance, got %+v", vms)
	}
}

func TestSessionManagerUnknownBinding(t *testing.T) {
	path := writeTestGraph(t)
	m := NewManager("graph", inspect.Options{})

	sess, err := m.StartSession("file-1", "scene.json", path, "no-such-binding", nil)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}

	s := waitForSession(t, m, sess.ID)
	if s.Status != models.SessionStatusError {
		t.Fatalf("Expected error status, got %s", s.Status)
	}
	if len(s.Errors) == 0 {
		t.Error("Expected error detail recorded")
	}
}

func TestSessionManagerMissingFile(t *testing.T) {
	m := NewManager("graph", inspect.Options{})

	sess, err := m.StartSession("file-1", "gone.json", "/nonexistent/path.json", "", nil)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}

	s := waitForSession(t, m, sess.ID)
	if s.Status != models.SessionStatusError {
		t.Fatalf("Expected error status, got %s", s.Status)
	}
}

func TestSessionManagerMalformedSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not a graph"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	m := NewManager("graph", inspect.Options{})
	sess, _ := m.StartSession("file-1", "broken.json", path, "", nil)

	s := waitForSession(t, m, sess.ID)
	if s.Status != models.SessionStatusError {
		t.Fatalf("Expected error status, got %s", s.Status)
	}
}

func TestSessionTouchAndCleanup(t *testing.T) {
	path := writeTestGraph(t)
	m := NewManager("graph", inspect.Options{})

	sess, _ := m.StartSession("file-1", "scene.json", path, "", nil)
	waitForSession(t, m, sess.ID)

	if !m.TouchSession(sess.ID) {
		t.Error("Expected touch to succeed for live session")
	}
	if m.TouchSession("nope") {
		t.Error("Expected touch to fail for unknown session")
	}

	// A freshly-touched session survives age-based cleanup.
	m.CleanupOldSessions(0)
	if _, ok := m.GetSession(sess.ID); !ok {
		t.Error("Expected recently accessed session to survive cleanup")
	}

	// Backdate the last access past the keep-alive window.
	m.mu.Lock()
	m.sessions[sess.ID].LastAccessed = time.Now().Add(-2 * SessionKeepAliveWindow)
	m.mu.Unlock()

	m.CleanupOldSessions(time.Minute)
	if _, ok := m.GetSession(sess.ID); ok {
		t.Error("Expected aged session to be cleaned up")
	}
}

func TestSessionCapacityCleanup(t *testing.T) {
	path := writeTestGraph(t)
	m := NewManager("graph", inspect.Options{})

	var ids []string
	for i := 0; i < MaxSessions; i++ {
		sess, err := m.StartSession("file-1", "scene.json", path, "", nil)
		if err != nil {
			t.Fatalf("Failed to start session %d: %v", i, err)
		}
		ids = append(ids, sess.ID)
		waitForSession(t, m, sess.ID)
	}

	// One more start must evict a completed session to stay at the limit.
	sess, err := m.StartSession("file-1", "scene.json", path, "", nil)
	if err != nil {
		t.Fatalf("Failed to start session past capacity: %v", err)
	}
	waitForSession(t, m, sess.ID)

	m.mu.RLock()
	count := len(m.sessions)
	m.mu.RUnlock()
	if count > MaxSessions {
		t.Errorf("Expected at most %d sessions, got %d", MaxSessions, count)
	}
}
