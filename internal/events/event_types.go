package events

import (
	"time"

	"github.com/campuscare/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintUpdated       EventType = "complaint_updated"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintNoteAdded     EventType = "complaint_note_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Category  domain.ComplaintCategory `json:"category"`
	Priority  domain.ComplaintPriority `json:"priority"`
	Sentiment domain.Sentiment         `json:"sentiment"`
	Degraded  bool                     `json:"degraded"`
}

// ComplaintUpdatedPayload payload.
type ComplaintUpdatedPayload struct {
	Fields      []string                 `json:"fields"`
	NewPriority domain.ComplaintPriority `json:"new_priority"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus  domain.ComplaintStatus `json:"old_status"`
	NewStatus  domain.ComplaintStatus `json:"new_status"`
	AssignedTo *string                `json:"assigned_to,omitempty"`
}

// ComplaintNoteAddedPayload payload.
type ComplaintNoteAddedPayload struct {
	NoteCount int `json:"note_count"`
}
