package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riv-inspector/backend/internal/docstore"
	"github.com/riv-inspector/backend/internal/inspect"
	"github.com/riv-inspector/backend/internal/models"
	"github.com/riv-inspector/backend/internal/riv"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion
const MaxSessions = 10

// SessionMaxAge is how long to keep completed sessions before cleanup
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

// Manager handles active inspect sessions.
type Manager struct {
	sessions       map[string]*sessionState
	mu             sync.RWMutex
	registry       *riv.Registry
	archive        *docstore.Store // optional; nil disables persistence
	defaultBinding string
	defaultOpts    inspect.Options
}

// sessionState holds session metadata and the completed document.
type sessionState struct {
	Session      *models.InspectSession
	Document     *models.Document
	FileName     string
	LastAccessed time.Time
}

// NewManager creates a session manager using the global runtime-binding
// registry.
func NewManager(defaultBinding string, defaultOpts inspect.Options) *Manager {
	return NewManagerWithRegistry(riv.GetGlobalRegistry(), defaultBinding, defaultOpts)
}

// NewManagerWithRegistry creates a session manager with a specific registry.
func NewManagerWithRegistry(registry *riv.Registry, defaultBinding string, defaultOpts inspect.Options) *Manager {
	return &Manager{
		sessions:       make(map[string]*sessionState),
		registry:       registry,
		defaultBinding: defaultBinding,
		defaultOpts:    defaultOpts,
	}
}

// SetArchive enables persistence of completed documents.
func (m *Manager) SetArchive(archive *docstore.Store) {
	m.archive = archive
}

// StartSession begins inspecting a file. opts overrides the manager defaults
// when non-nil.
func (m *Manager) StartSession(fileID, fileName, filePath, binding string, opts *inspect.Options) (*models.InspectSession, error) {
	// Clean up old sessions if at limit
	m.cleanupOldSessionsIfNeeded()

	if binding == "" {
		binding = m.defaultBinding
	}
	effectiveOpts := m.defaultOpts
	if opts != nil {
		effectiveOpts = *opts
	}

	sessionID := uuid.New().String()

	session := models.NewInspectSession(sessionID, fileID)
	session.Status = models.SessionStatusInspecting
	session.Binding = binding

	state := &sessionState{
		Session:      session,
		FileName:     fileName,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	// Run the inspection in a background goroutine
	go m.runInspect(sessionID, filePath, binding, effectiveOpts)

	return session, nil
}

func (m *Manager) runInspect(sessionID, filePath, binding string, opts inspect.Options) {
	// Recover from panics to prevent backend crash
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Inspect %s] PANIC recovered: %v\n", sessionID[:8], r)
			m.updateSessionError(sessionID, fmt.Sprintf("inspection panicked: %v", r))
		}
	}()

	start := time.Now()
	fmt.Printf("[Inspect %s] Starting inspection of %s via %q binding\n", sessionID[:8], filePath, binding)

	src, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("[Inspect %s] ERROR reading source: %v\n", sessionID[:8], err)
		m.updateSessionError(sessionID, fmt.Sprintf("reading source file: %v", err))
		return
	}

	loader, err := m.registry.Open(binding)
	if err != nil {
		fmt.Printf("[Inspect %s] ERROR: %v\n", sessionID[:8], err)
		m.updateSessionError(sessionID, err.Error())
		return
	}

	m.mu.Lock()
	if state, ok := m.sessions[sessionID]; ok {
		state.Session.Progress = 10
	}
	m.mu.Unlock()

	doc, err := inspect.Inspect(context.Background(), loader, src, opts)
	if err != nil {
		fmt.Printf("[Inspect %s] ERROR: inspection failed: %v\n", sessionID[:8], err)
		m.updateSessionError(sessionID, fmt.Sprintf("inspection failed: %v", err))
		return
	}

	elapsed := time.Since(start).Milliseconds()
	fmt.Printf("[Inspect %s] Complete: %d artboards, %d blueprints, %d assets in %dms\n",
		sessionID[:8], len(doc.Artboards), len(doc.ViewModels), len(doc.Assets), elapsed)

	m.mu.Lock()
	state, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return
	}
	state.Document = doc
	state.Session.Status = models.SessionStatusComplete
	state.Session.Progress = 100
	state.Session.ArtboardCount = len(doc.Artboards)
	state.Session.BlueprintCount = len(doc.ViewModels)
	state.Session.EnumCount = len(doc.Enums)
	state.Session.AssetCount = len(doc.Assets)
	state.Session.ProcessingTimeMs = elapsed
	fileName := state.FileName
	m.mu.Unlock()

	// Archive outside the lock; failures are logged, never fatal
	if m.archive != nil {
		if err := m.archive.Put(sessionID, fileName, doc); err != nil {
			fmt.Printf("[Inspect %s] WARNING: archiving document failed: %v\n", sessionID[:8], err)
		}
	}
}

func (m *Manager) updateSessionError(sessionID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Session.Status = models.SessionStatusError
	state.Session.Errors = append(state.Session.Errors, models.InspectError{
		Stage:  "inspect",
		Reason: reason,
	})
}

// cleanupOldSessionsIfNeeded removes oldest completed sessions if at capacity
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	var toDelete []string
	for id, state := range m.sessions {
		if state.Session.Status == models.SessionStatusComplete ||
			state.Session.Status == models.SessionStatusError {
			toDelete = append(toDelete, id)
		}
	}

	toFree := len(m.sessions) - MaxSessions + 1
	deleted := 0
	for _, id := range toDelete {
		if deleted >= toFree {
			break
		}
		delete(m.sessions, id)
		deleted++
		fmt.Printf("[Manager] Cleaned up old session %s to free memory\n", id[:8])
	}
}

// CleanupOldSessions removes sessions older than maxAge, but keeps sessions
// that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}

		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}

		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed: %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// GetSession returns a session by ID.
func (m *Manager) GetSession(id string) (*models.InspectSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return state.Session, true
}

// GetDocument returns the completed document for a session.
func (m *Manager) GetDocument(id string) (*models.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Document == nil {
		return nil, false
	}
	return state.Document, true
}

// TouchSession updates the LastAccessed timestamp for a session so active
// viewers keep it alive.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}
