package models

// SessionStatus represents the status of an inspect session.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusInspecting SessionStatus = "inspecting"
	SessionStatusComplete   SessionStatus = "complete"
	SessionStatusError      SessionStatus = "error"
)

// InspectSession represents one file inspection session.
type InspectSession struct {
	ID               string         `json:"id"`
	FileID           string         `json:"fileId"`
	Status           SessionStatus  `json:"status"`
	Progress         float64        `json:"progress"` // 0-100
	Binding          string         `json:"binding,omitempty"`
	ArtboardCount    int            `json:"artboardCount,omitempty"`
	BlueprintCount   int            `json:"blueprintCount,omitempty"`
	EnumCount        int            `json:"enumCount,omitempty"`
	AssetCount       int            `json:"assetCount,omitempty"`
	ProcessingTimeMs int64          `json:"processingTimeMs,omitempty"`
	Errors           []InspectError `json:"errors,omitempty"`
}

// InspectError represents an error encountered during inspection.
type InspectError struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// NewInspectSession creates a new InspectSession in pending status.
func NewInspectSession(id, fileID string) *InspectSession {
	return &InspectSession{
		ID:       id,
		FileID:   fileID,
		Status:   SessionStatusPending,
		Progress: 0,
		Errors:   make([]InspectError, 0),
	}
}
