package dto

import (
	"time"

	"github.com/campuscare/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest references a file already placed by the upload collaborator.
type AttachmentRequest struct {
	Filename    string `json:"filename"`
	StoragePath string `json:"storage_path"`
	MimeType    string `json:"mime_type"`
}

// UpdateComplaintRequest carries optional owner edits; absent fields stay nil.
type UpdateComplaintRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// UpdateStatusRequest payload for admin transitions.
type UpdateStatusRequest struct {
	Status     string  `json:"status"`
	AssignedTo *string `json:"assigned_to"`
	AdminNote  *string `json:"admin_note"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Note string `json:"note"`
}

// SentimentResponse mirrors the stored classifier result.
type SentimentResponse struct {
	Sentiment       string   `json:"sentiment"`
	Confidence      float64  `json:"confidence"`
	UrgencyKeywords []string `json:"urgency_keywords"`
}

// AdminNoteResponse is one annotation with its author resolved when known.
type AdminNoteResponse struct {
	Note    string          `json:"note"`
	AddedBy string          `json:"added_by"`
	Author  *domain.UserRef `json:"author,omitempty"`
	AddedAt time.Time       `json:"added_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	Filename    string `json:"filename"`
	StoragePath string `json:"storage_path"`
	MimeType    string `json:"mime_type"`
}

// ComplaintResponse provides full complaint info.
type ComplaintResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Priority    string               `json:"priority"`
	Status      string               `json:"status"`
	SubmittedBy *domain.UserRef      `json:"submitted_by"`
	AssignedTo  *domain.UserRef      `json:"assigned_to,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`
	Sentiment   *SentimentResponse   `json:"sentiment_analysis,omitempty"`
	AdminNotes  []AdminNoteResponse  `json:"admin_notes"`
	ResolvedAt  *time.Time           `json:"resolved_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ComplaintListResponse pages complaints with the original pagination shape.
type ComplaintListResponse struct {
	Complaints  []ComplaintResponse `json:"complaints"`
	Total       int64               `json:"total"`
	CurrentPage int                 `json:"currentPage"`
	TotalPages  int64               `json:"totalPages"`
}
