package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/events"
	"github.com/campuscare/complaint-service/internal/repository"
	"github.com/campuscare/complaint-service/internal/sentiment"
	apperrors "github.com/campuscare/complaint-service/pkg/util"
)

// ComplaintService owns the complaint lifecycle: creation with sentiment
// derivation, owner edits while pending, admin transitions, and the
// access-scoped query layer.
type ComplaintService struct {
	complaints    repository.ComplaintRepository
	users         repository.UserRepository
	analyzer      sentiment.Analyzer
	dispatcher    events.Dispatcher
	oracleTimeout time.Duration
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	UserRepo      repository.UserRepository
	Analyzer      sentiment.Analyzer
	Dispatcher    events.Dispatcher
	OracleTimeout time.Duration
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	timeout := deps.OracleTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ComplaintService{
		complaints:    deps.ComplaintRepo,
		users:         deps.UserRepo,
		analyzer:      deps.Analyzer,
		dispatcher:    deps.Dispatcher,
		oracleTimeout: timeout,
	}
}

// CreateInput describes a complaint submission.
type CreateInput struct {
	Title       string
	Description string
	Category    domain.ComplaintCategory
	Attachments []domain.Attachment
}

// OwnerPatchInput carries optional owner edits. Nil means "field absent".
type OwnerPatchInput struct {
	Title       *string
	Description *string
	Category    *domain.ComplaintCategory
}

// TransitionInput describes an admin status change.
type TransitionInput struct {
	Status     domain.ComplaintStatus
	AssignedTo *string
	AdminNote  *string
}

// OwnerFilter narrows an owner's own listing.
type OwnerFilter struct {
	Status   *domain.ComplaintStatus
	Category *domain.ComplaintCategory
}

// AdminFilter narrows the admin listing.
type AdminFilter struct {
	Status   *domain.ComplaintStatus
	Category *domain.ComplaintCategory
	Priority *domain.ComplaintPriority
	Search   *string
}

// Create validates and persists a new complaint. The sentiment oracle sets
// the initial priority; oracle unavailability never blocks creation.
func (s *ComplaintService) Create(ctx context.Context, principal domain.Principal, input CreateInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"field": "category"})
	}

	priority, analysis, degraded := s.deriveSentiment(ctx, title+" "+description)

	complaint := &domain.Complaint{
		Title:       title,
		Description: description,
		Category:    input.Category,
		Priority:    priority,
		Status:      domain.ComplaintStatusPending,
		SubmittedBy: principal.ID,
		Attachments: input.Attachments,
		Sentiment:   analysis,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		ActorID:     principal.ID,
		Payload: events.ComplaintCreatedPayload{
			Category:  complaint.Category,
			Priority:  complaint.Priority,
			Sentiment: analysis.Sentiment,
			Degraded:  degraded,
		},
	})

	if err := s.populateRefs(ctx, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// UpdateOwnerFields applies an owner edit. Owners lose edit rights the moment
// the complaint leaves pending.
func (s *ComplaintService) UpdateOwnerFields(ctx context.Context, principal domain.Principal, complaintID string, patch OwnerPatchInput) (*domain.Complaint, error) {
	existing, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if existing.SubmittedBy != principal.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if existing.Status != domain.ComplaintStatusPending {
		return nil, apperrors.NewInvalidState("complaint can no longer be edited once it is being processed")
	}

	merged := repository.OwnerPatch{
		Title:       existing.Title,
		Description: existing.Description,
		Category:    existing.Category,
		Priority:    existing.Priority,
		Sentiment:   existing.Sentiment,
	}
	changedFields := []string{}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", map[string]any{"field": "title"})
		}
		if title != merged.Title {
			merged.Title = title
			changedFields = append(changedFields, "title")
		}
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description cannot be empty", map[string]any{"field": "description"})
		}
		if description != merged.Description {
			merged.Description = description
			changedFields = append(changedFields, "description")
		}
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, apperrors.NewValidationError("invalid category", map[string]any{"field": "category"})
		}
		if *patch.Category != merged.Category {
			merged.Category = *patch.Category
			changedFields = append(changedFields, "category")
		}
	}

	textChanged := containsAny(changedFields, "title", "description")
	if textChanged {
		priority, analysis, _ := s.deriveSentiment(ctx, merged.Title+" "+merged.Description)
		merged.Priority = priority
		merged.Sentiment = analysis
	}

	updated, err := s.complaints.UpdateOwnerFields(ctx, complaintID, principal.ID, merged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row moved underneath us; re-read to report the precise gate.
			return nil, s.explainOwnerUpdateConflict(ctx, principal, complaintID)
		}
		return nil, apperrors.NewStorageError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintUpdated,
		ComplaintID: updated.ID,
		ActorID:     principal.ID,
		Payload: events.ComplaintUpdatedPayload{
			Fields:      changedFields,
			NewPriority: updated.Priority,
		},
	})

	if err := s.populateRefs(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// TransitionStatus moves a complaint to any of the four states. Admins may
// revert or skip states for corrective workflows, so the transition graph is
// deliberately unconstrained.
func (s *ComplaintService) TransitionStatus(ctx context.Context, principal domain.Principal, complaintID string, input TransitionInput) (*domain.Complaint, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"field": "status"})
	}

	existing, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	oldStatus := existing.Status

	patch := repository.StatusPatch{
		Status:     input.Status,
		AssignedTo: input.AssignedTo,
	}
	if input.AdminNote != nil {
		if note := strings.TrimSpace(*input.AdminNote); note != "" {
			patch.Note = &domain.AdminNote{
				Note:    note,
				AddedBy: principal.ID,
				AddedAt: time.Now().UTC(),
			}
		}
	}

	updated, err := s.complaints.ApplyStatusPatch(ctx, complaintID, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": complaintID})
		}
		return nil, apperrors.NewStorageError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: updated.ID,
		ActorID:     principal.ID,
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus:  oldStatus,
			NewStatus:  updated.Status,
			AssignedTo: updated.AssignedTo,
		},
	})

	if err := s.populateRefs(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// AddAdminNote appends an annotation and returns the full note sequence.
func (s *ComplaintService) AddAdminNote(ctx context.Context, principal domain.Principal, complaintID, note string) ([]domain.AdminNote, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("note is required", map[string]any{"field": "note"})
	}

	entry := domain.AdminNote{
		Note:    note,
		AddedBy: principal.ID,
		AddedAt: time.Now().UTC(),
	}
	updated, err := s.complaints.AppendAdminNote(ctx, complaintID, entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": complaintID})
		}
		return nil, apperrors.NewStorageError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintNoteAdded,
		ComplaintID: updated.ID,
		ActorID:     principal.ID,
		Payload: events.ComplaintNoteAddedPayload{
			NoteCount: len(updated.AdminNotes),
		},
	})

	if err := s.populateRefs(ctx, updated); err != nil {
		return nil, err
	}
	return updated.AdminNotes, nil
}

// GetByID fetches a complaint for its owner or an admin.
func (s *ComplaintService) GetByID(ctx context.Context, principal domain.Principal, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && complaint.SubmittedBy != principal.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if err := s.populateRefs(ctx, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// ListForOwner returns the principal's own complaints, most recent first.
// Ownership scoping cannot be bypassed by filter input.
func (s *ComplaintService) ListForOwner(ctx context.Context, principal domain.Principal, filter OwnerFilter, page, pageSize int) ([]domain.Complaint, int64, error) {
	repoFilter := repository.ComplaintFilter{
		SubmittedBy: &principal.ID,
		Status:      filter.Status,
		Category:    filter.Category,
	}
	return s.list(ctx, repoFilter, page, pageSize)
}

// ListForAdmin returns complaints across all owners.
func (s *ComplaintService) ListForAdmin(ctx context.Context, principal domain.Principal, filter AdminFilter, page, pageSize int) ([]domain.Complaint, int64, error) {
	if !principal.IsAdmin() {
		return nil, 0, apperrors.NewForbidden("admin role required")
	}
	repoFilter := repository.ComplaintFilter{
		Status:   filter.Status,
		Category: filter.Category,
		Priority: filter.Priority,
		Search:   filter.Search,
	}
	return s.list(ctx, repoFilter, page, pageSize)
}

func (s *ComplaintService) list(ctx context.Context, filter repository.ComplaintFilter, page, pageSize int) ([]domain.Complaint, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	items, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewStorageError(err)
	}
	total, err := s.complaints.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewStorageError(err)
	}
	if err := s.populateListRefs(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ComplaintService) getComplaint(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": complaintID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	return complaint, nil
}

// deriveSentiment asks the oracle under a bounded deadline. On any failure it
// returns the neutral degrade result; creation and owner edits never block on
// oracle availability.
func (s *ComplaintService) deriveSentiment(ctx context.Context, text string) (domain.ComplaintPriority, *domain.SentimentAnalysis, bool) {
	degraded := &domain.SentimentAnalysis{
		Sentiment:       domain.SentimentNeutral,
		Confidence:      0.5,
		UrgencyKeywords: []string{},
	}
	if s.analyzer == nil {
		return domain.ComplaintPriorityMedium, degraded, true
	}

	oracleCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	result, err := s.analyzer.Analyze(oracleCtx, text)
	if err != nil || result == nil {
		return domain.ComplaintPriorityMedium, degraded, true
	}

	priority := result.Priority
	if !priority.Valid() {
		priority = domain.ComplaintPriorityMedium
	}
	keywords := result.UrgencyKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return priority, &domain.SentimentAnalysis{
		Sentiment:       result.Sentiment,
		Confidence:      result.Confidence,
		UrgencyKeywords: keywords,
	}, false
}

// explainOwnerUpdateConflict re-reads after a zero-row conditional update to
// surface the precise reason it failed.
func (s *ComplaintService) explainOwnerUpdateConflict(ctx context.Context, principal domain.Principal, complaintID string) error {
	current, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return err
	}
	if current.SubmittedBy != principal.ID {
		return apperrors.NewForbidden("access denied")
	}
	return apperrors.NewInvalidState("complaint can no longer be edited once it is being processed")
}

// populateRefs resolves submitter, assignee, and note author projections.
func (s *ComplaintService) populateRefs(ctx context.Context, complaint *domain.Complaint) error {
	return s.populateListRefs(ctx, []domain.Complaint{*complaint}, complaint)
}

// populateListRefs batch-resolves user references for a page of complaints.
// When single is non-nil the refs are written back to it instead of the slice
// copy.
func (s *ComplaintService) populateListRefs(ctx context.Context, items []domain.Complaint, single ...*domain.Complaint) error {
	idSet := map[string]struct{}{}
	for i := range items {
		idSet[items[i].SubmittedBy] = struct{}{}
		if items[i].AssignedTo != nil {
			idSet[*items[i].AssignedTo] = struct{}{}
		}
		for _, note := range items[i].AdminNotes {
			idSet[note.AddedBy] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	refs, err := s.users.GetRefsByIDs(ctx, ids)
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	apply := func(c *domain.Complaint) {
		if ref, ok := refs[c.SubmittedBy]; ok {
			r := ref
			c.Submitter = &r
		}
		if c.AssignedTo != nil {
			if ref, ok := refs[*c.AssignedTo]; ok {
				r := ref
				c.Assignee = &r
			}
		}
		for i := range c.AdminNotes {
			if ref, ok := refs[c.AdminNotes[i].AddedBy]; ok {
				r := ref
				c.AdminNotes[i].Author = &r
			}
		}
	}

	if len(single) > 0 && single[0] != nil {
		apply(single[0])
		return nil
	}
	for i := range items {
		apply(&items[i])
	}
	return nil
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func containsAny(fields []string, wanted ...string) bool {
	for _, field := range fields {
		for _, want := range wanted {
			if field == want {
				return true
			}
		}
	}
	return false
}
