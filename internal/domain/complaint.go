package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in-progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusClosed     ComplaintStatus = "closed"
)

// Valid reports whether the status belongs to the closed set.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved, ComplaintStatusClosed:
		return true
	}
	return false
}

// ComplaintPriority enumerates urgency levels derived from sentiment analysis.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityMedium ComplaintPriority = "medium"
	ComplaintPriorityHigh   ComplaintPriority = "high"
)

// Valid reports whether the priority belongs to the closed set.
func (p ComplaintPriority) Valid() bool {
	switch p {
	case ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh:
		return true
	}
	return false
}

// ComplaintCategory enumerates the fixed submission categories.
type ComplaintCategory string

const (
	CategoryHostel         ComplaintCategory = "hostel"
	CategoryAcademic       ComplaintCategory = "academic"
	CategoryInfrastructure ComplaintCategory = "infrastructure"
	CategoryFood           ComplaintCategory = "food"
	CategoryTransport      ComplaintCategory = "transport"
	CategoryWifi           ComplaintCategory = "wifi"
	CategoryOther          ComplaintCategory = "other"
)

// Valid reports whether the category belongs to the closed set.
func (c ComplaintCategory) Valid() bool {
	switch c {
	case CategoryHostel, CategoryAcademic, CategoryInfrastructure, CategoryFood, CategoryTransport, CategoryWifi, CategoryOther:
		return true
	}
	return false
}

// Sentiment enumerates classifier outcomes.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Attachment records metadata for a file stored by the upload collaborator.
type Attachment struct {
	Filename    string `json:"filename"`
	StoragePath string `json:"storage_path"`
	MimeType    string `json:"mime_type"`
}

// SentimentAnalysis captures the classifier result attached to a complaint.
type SentimentAnalysis struct {
	Sentiment       Sentiment `json:"sentiment"`
	Confidence      float64   `json:"confidence"`
	UrgencyKeywords []string  `json:"urgency_keywords"`
}

// AdminNote is a single append-only annotation left by an administrator.
type AdminNote struct {
	Note    string    `json:"note"`
	AddedBy string    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`

	// Author is the display projection for AddedBy; never persisted.
	Author *UserRef `json:"-"`
}

// Complaint is the aggregate for submitted issue reports.
type Complaint struct {
	ID          string
	Title       string
	Description string
	Category    ComplaintCategory
	Priority    ComplaintPriority
	Status      ComplaintStatus
	SubmittedBy string
	AssignedTo  *string
	Attachments []Attachment
	Sentiment   *SentimentAnalysis
	AdminNotes  []AdminNote
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Display projections resolved by the query layer; nil on bare reads.
	Submitter *UserRef
	Assignee  *UserRef
}
