package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/events"
	"github.com/campuscare/complaint-service/internal/repository"
	"github.com/campuscare/complaint-service/internal/sentiment"
	"github.com/campuscare/complaint-service/internal/service"
	apperrors "github.com/campuscare/complaint-service/pkg/util"
)

const (
	ownerID   = "11111111-1111-1111-1111-111111111111"
	otherID   = "22222222-2222-2222-2222-222222222222"
	adminID   = "33333333-3333-3333-3333-333333333333"
	complaint = "44444444-4444-4444-4444-444444444444"
)

func ownerPrincipal() domain.Principal {
	return domain.Principal{ID: ownerID, Role: domain.UserRoleUser}
}

func adminPrincipal() domain.Principal {
	return domain.Principal{ID: adminID, Role: domain.UserRoleAdmin}
}

func newComplaintService(complaints *MockComplaintRepository, users *MockUserRepository, analyzer *MockAnalyzer, dispatcher events.Dispatcher) *service.ComplaintService {
	return service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaints,
		UserRepo:      users,
		Analyzer:      analyzer,
		Dispatcher:    dispatcher,
		OracleTimeout: time.Second,
	})
}

func expectDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func stubRefs(users *MockUserRepository) {
	users.On("GetRefsByIDs", mock.Anything, mock.Anything).Return(map[string]domain.UserRef{
		ownerID: {ID: ownerID, Name: "Asha", Email: "asha@example.edu"},
		adminID: {ID: adminID, Name: "Dean", Email: "dean@example.edu"},
	}, nil)
}

func TestCreateUsesOraclePriority(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	analyzer := new(MockAnalyzer)
	stubRefs(users)

	analyzer.On("Analyze", mock.Anything, "No hot water No hot water for three days").Return(&sentiment.Result{
		Sentiment:       domain.SentimentNegative,
		Confidence:      0.91,
		Priority:        domain.ComplaintPriorityHigh,
		UrgencyKeywords: []string{"urgent"},
	}, nil)
	complaints.On("Create", mock.Anything, mock.AnythingOfType("*domain.Complaint")).Run(func(args mock.Arguments) {
		c := args.Get(1).(*domain.Complaint)
		c.ID = complaint
		c.CreatedAt = time.Now()
	}).Return(nil)

	svc := newComplaintService(complaints, users, analyzer, events.NewInMemoryDispatcher())
	created, err := svc.Create(context.Background(), ownerPrincipal(), service.CreateInput{
		Title:       "No hot water",
		Description: "No hot water for three days",
		Category:    domain.CategoryHostel,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintPriorityHigh, created.Priority)
	assert.Equal(t, domain.ComplaintStatusPending, created.Status)
	assert.Equal(t, ownerID, created.SubmittedBy)
	require.NotNil(t, created.Sentiment)
	assert.Equal(t, domain.SentimentNegative, created.Sentiment.Sentiment)
	assert.InDelta(t, 0.91, created.Sentiment.Confidence, 1e-9)
	require.NotNil(t, created.Submitter)
	assert.Equal(t, "Asha", created.Submitter.Name)
	complaints.AssertExpectations(t)
	analyzer.AssertExpectations(t)
}

func TestCreateDegradesWhenOracleFails(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	analyzer := new(MockAnalyzer)
	stubRefs(users)

	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	complaints.On("Create", mock.Anything, mock.AnythingOfType("*domain.Complaint")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Complaint).ID = complaint
	}).Return(nil)

	dispatcher := events.NewInMemoryDispatcher()
	var captured []events.Event
	dispatcher.Subscribe(events.EventComplaintCreated, func(_ context.Context, e events.Event) error {
		captured = append(captured, e)
		return nil
	})

	svc := newComplaintService(complaints, users, analyzer, dispatcher)
	created, err := svc.Create(context.Background(), ownerPrincipal(), service.CreateInput{
		Title:       "Projector broken",
		Description: "Room 204 projector will not power on",
		Category:    domain.CategoryInfrastructure,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintPriorityMedium, created.Priority)
	require.NotNil(t, created.Sentiment)
	assert.Equal(t, domain.SentimentNeutral, created.Sentiment.Sentiment)
	assert.InDelta(t, 0.5, created.Sentiment.Confidence, 1e-9)
	assert.Empty(t, created.Sentiment.UrgencyKeywords)
	assert.NotNil(t, created.Sentiment.UrgencyKeywords)

	require.Len(t, captured, 1)
	payload := captured[0].Payload.(events.ComplaintCreatedPayload)
	assert.True(t, payload.Degraded)
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	svc := newComplaintService(new(MockComplaintRepository), new(MockUserRepository), new(MockAnalyzer), nil)

	_, err := svc.Create(context.Background(), ownerPrincipal(), service.CreateInput{
		Title:       "   ",
		Description: "something",
		Category:    domain.CategoryFood,
	})
	expectDomainCode(t, err, "VALIDATION_FAILED")
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := newComplaintService(new(MockComplaintRepository), new(MockUserRepository), new(MockAnalyzer), nil)

	_, err := svc.Create(context.Background(), ownerPrincipal(), service.CreateInput{
		Title:       "Broken chair",
		Description: "Chair in the library",
		Category:    domain.ComplaintCategory("gardening"),
	})
	expectDomainCode(t, err, "VALIDATION_FAILED")
}

func TestUpdateOwnerFieldsRejectsNonOwner(t *testing.T) {
	complaints := new(MockComplaintRepository)
	complaints.On("GetByID", mock.Anything, complaint).Return(&domain.Complaint{
		ID:          complaint,
		Status:      domain.ComplaintStatusPending,
		SubmittedBy: ownerID,
	}, nil)

	svc := newComplaintService(complaints, new(MockUserRepository), new(MockAnalyzer), nil)
	title := "hijack"
	_, err := svc.UpdateOwnerFields(context.Background(), domain.Principal{ID: otherID, Role: domain.UserRoleUser}, complaint, service.OwnerPatchInput{Title: &title})
	expectDomainCode(t, err, "FORBIDDEN")
}

func TestUpdateOwnerFieldsRejectsProcessedComplaint(t *testing.T) {
	complaints := new(MockComplaintRepository)
	complaints.On("GetByID", mock.Anything, complaint).Return(&domain.Complaint{
		ID:          complaint,
		Status:      domain.ComplaintStatusInProgress,
		SubmittedBy: ownerID,
	}, nil)

	svc := newComplaintService(complaints, new(MockUserRepository), new(MockAnalyzer), nil)
	title := "edit attempt"
	_, err := svc.UpdateOwnerFields(context.Background(), ownerPrincipal(), complaint, service.OwnerPatchInput{Title: &title})
	expectDomainCode(t, err, "INVALID_STATE")
}

func TestUpdateOwnerFieldsRederivesSentimentOnTextChange(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	analyzer := new(MockAnalyzer)
	stubRefs(users)

	existing := &domain.Complaint{
		ID:          complaint,
		Title:       "Slow wifi",
		Description: "Library wifi keeps dropping",
		Category:    domain.CategoryWifi,
		Priority:    domain.ComplaintPriorityLow,
		Status:      domain.ComplaintStatusPending,
		SubmittedBy: ownerID,
	}
	complaints.On("GetByID", mock.Anything, complaint).Return(existing, nil)
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(&sentiment.Result{
		Sentiment:       domain.SentimentNegative,
		Confidence:      0.8,
		Priority:        domain.ComplaintPriorityHigh,
		UrgencyKeywords: []string{"outage"},
	}, nil)
	complaints.On("UpdateOwnerFields", mock.Anything, complaint, ownerID, mock.MatchedBy(func(patch repository.OwnerPatch) bool {
		return patch.Priority == domain.ComplaintPriorityHigh &&
			patch.Title == "Total wifi outage" &&
			patch.Sentiment != nil && patch.Sentiment.Sentiment == domain.SentimentNegative
	})).Return(&domain.Complaint{
		ID:          complaint,
		Title:       "Total wifi outage",
		Description: "Library wifi keeps dropping",
		Category:    domain.CategoryWifi,
		Priority:    domain.ComplaintPriorityHigh,
		Status:      domain.ComplaintStatusPending,
		SubmittedBy: ownerID,
	}, nil)

	svc := newComplaintService(complaints, users, analyzer, events.NewInMemoryDispatcher())
	title := "Total wifi outage"
	updated, err := svc.UpdateOwnerFields(context.Background(), ownerPrincipal(), complaint, service.OwnerPatchInput{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintPriorityHigh, updated.Priority)
	complaints.AssertExpectations(t)
	analyzer.AssertExpectations(t)
}

func TestUpdateOwnerFieldsSkipsOracleWhenOnlyCategoryChanges(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	analyzer := new(MockAnalyzer)
	stubRefs(users)

	existing := &domain.Complaint{
		ID:          complaint,
		Title:       "Bus always late",
		Description: "Morning shuttle is 30 minutes late",
		Category:    domain.CategoryOther,
		Priority:    domain.ComplaintPriorityMedium,
		Status:      domain.ComplaintStatusPending,
		SubmittedBy: ownerID,
	}
	complaints.On("GetByID", mock.Anything, complaint).Return(existing, nil)
	complaints.On("UpdateOwnerFields", mock.Anything, complaint, ownerID, mock.MatchedBy(func(patch repository.OwnerPatch) bool {
		return patch.Category == domain.CategoryTransport && patch.Priority == domain.ComplaintPriorityMedium
	})).Return(existing, nil)

	svc := newComplaintService(complaints, users, analyzer, nil)
	category := domain.CategoryTransport
	_, err := svc.UpdateOwnerFields(context.Background(), ownerPrincipal(), complaint, service.OwnerPatchInput{Category: &category})

	require.NoError(t, err)
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestUpdateOwnerFieldsExplainsLostRace(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	analyzer := new(MockAnalyzer)

	pendingRead := &domain.Complaint{
		ID:          complaint,
		Title:       "Mess food quality",
		Description: "Dinner was inedible twice this week",
		Category:    domain.CategoryFood,
		Priority:    domain.ComplaintPriorityMedium,
		Status:      domain.ComplaintStatusPending,
		SubmittedBy: ownerID,
	}
	afterTransition := &domain.Complaint{
		ID:          complaint,
		Status:      domain.ComplaintStatusInProgress,
		SubmittedBy: ownerID,
	}
	// First read passes the pending gate, the conditional update loses to a
	// concurrent transition, and the re-read reports the real state.
	complaints.On("GetByID", mock.Anything, complaint).Return(pendingRead, nil).Once()
	complaints.On("UpdateOwnerFields", mock.Anything, complaint, ownerID, mock.Anything).Return(nil, pgx.ErrNoRows)
	complaints.On("GetByID", mock.Anything, complaint).Return(afterTransition, nil).Once()

	svc := newComplaintService(complaints, users, analyzer, nil)
	category := domain.CategoryHostel
	_, err := svc.UpdateOwnerFields(context.Background(), ownerPrincipal(), complaint, service.OwnerPatchInput{Category: &category})
	expectDomainCode(t, err, "INVALID_STATE")
}

func TestTransitionStatusRequiresAdmin(t *testing.T) {
	svc := newComplaintService(new(MockComplaintRepository), new(MockUserRepository), new(MockAnalyzer), nil)

	_, err := svc.TransitionStatus(context.Background(), ownerPrincipal(), complaint, service.TransitionInput{
		Status: domain.ComplaintStatusResolved,
	})
	expectDomainCode(t, err, "FORBIDDEN")
}

func TestTransitionStatusRejectsUnknownStatus(t *testing.T) {
	svc := newComplaintService(new(MockComplaintRepository), new(MockUserRepository), new(MockAnalyzer), nil)

	_, err := svc.TransitionStatus(context.Background(), adminPrincipal(), complaint, service.TransitionInput{
		Status: domain.ComplaintStatus("archived"),
	})
	expectDomainCode(t, err, "VALIDATION_FAILED")
}

func TestTransitionStatusAppliesPatchAndPublishes(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	stubRefs(users)

	assignee := adminID
	resolvedAt := time.Now().UTC()
	complaints.On("GetByID", mock.Anything, complaint).Return(&domain.Complaint{
		ID:          complaint,
		Status:      domain.ComplaintStatusInProgress,
		SubmittedBy: ownerID,
	}, nil)
	complaints.On("ApplyStatusPatch", mock.Anything, complaint, mock.MatchedBy(func(patch repository.StatusPatch) bool {
		return patch.Status == domain.ComplaintStatusResolved &&
			patch.AssignedTo != nil && *patch.AssignedTo == assignee &&
			patch.Note != nil && patch.Note.Note == "fixed by facilities" && patch.Note.AddedBy == adminID
	})).Return(&domain.Complaint{
		ID:          complaint,
		Status:      domain.ComplaintStatusResolved,
		SubmittedBy: ownerID,
		AssignedTo:  &assignee,
		ResolvedAt:  &resolvedAt,
		AdminNotes: []domain.AdminNote{
			{Note: "fixed by facilities", AddedBy: adminID, AddedAt: resolvedAt},
		},
	}, nil)

	dispatcher := events.NewInMemoryDispatcher()
	var captured []events.Event
	dispatcher.Subscribe(events.EventComplaintStatusChanged, func(_ context.Context, e events.Event) error {
		captured = append(captured, e)
		return nil
	})

	svc := newComplaintService(complaints, users, new(MockAnalyzer), dispatcher)
	note := "  fixed by facilities  "
	updated, err := svc.TransitionStatus(context.Background(), adminPrincipal(), complaint, service.TransitionInput{
		Status:     domain.ComplaintStatusResolved,
		AssignedTo: &assignee,
		AdminNote:  &note,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	require.Len(t, updated.AdminNotes, 1)
	require.NotNil(t, updated.AdminNotes[0].Author)
	assert.Equal(t, "Dean", updated.AdminNotes[0].Author.Name)

	require.Len(t, captured, 1)
	payload := captured[0].Payload.(events.ComplaintStatusChangedPayload)
	assert.Equal(t, domain.ComplaintStatusInProgress, payload.OldStatus)
	assert.Equal(t, domain.ComplaintStatusResolved, payload.NewStatus)
	complaints.AssertExpectations(t)
}

func TestTransitionStatusMissingComplaint(t *testing.T) {
	complaints := new(MockComplaintRepository)
	complaints.On("GetByID", mock.Anything, complaint).Return(nil, pgx.ErrNoRows)

	svc := newComplaintService(complaints, new(MockUserRepository), new(MockAnalyzer), nil)
	_, err := svc.TransitionStatus(context.Background(), adminPrincipal(), complaint, service.TransitionInput{
		Status: domain.ComplaintStatusClosed,
	})
	expectDomainCode(t, err, "NOT_FOUND")
}

func TestAddAdminNoteRequiresAdminAndContent(t *testing.T) {
	svc := newComplaintService(new(MockComplaintRepository), new(MockUserRepository), new(MockAnalyzer), nil)

	_, err := svc.AddAdminNote(context.Background(), ownerPrincipal(), complaint, "note")
	expectDomainCode(t, err, "FORBIDDEN")

	_, err = svc.AddAdminNote(context.Background(), adminPrincipal(), complaint, "   ")
	expectDomainCode(t, err, "VALIDATION_FAILED")
}

func TestAddAdminNoteReturnsFullSequence(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	stubRefs(users)

	now := time.Now().UTC()
	complaints.On("AppendAdminNote", mock.Anything, complaint, mock.MatchedBy(func(note domain.AdminNote) bool {
		return note.Note == "escalated to warden" && note.AddedBy == adminID
	})).Return(&domain.Complaint{
		ID:          complaint,
		Status:      domain.ComplaintStatusInProgress,
		SubmittedBy: ownerID,
		AdminNotes: []domain.AdminNote{
			{Note: "first look", AddedBy: adminID, AddedAt: now.Add(-time.Hour)},
			{Note: "escalated to warden", AddedBy: adminID, AddedAt: now},
		},
	}, nil)

	svc := newComplaintService(complaints, users, new(MockAnalyzer), events.NewInMemoryDispatcher())
	notes, err := svc.AddAdminNote(context.Background(), adminPrincipal(), complaint, "escalated to warden")

	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "escalated to warden", notes[1].Note)
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	stubRefs(users)
	complaints.On("GetByID", mock.Anything, complaint).Return(&domain.Complaint{
		ID:          complaint,
		SubmittedBy: ownerID,
		Status:      domain.ComplaintStatusPending,
	}, nil)

	svc := newComplaintService(complaints, users, new(MockAnalyzer), nil)

	_, err := svc.GetByID(context.Background(), domain.Principal{ID: otherID, Role: domain.UserRoleUser}, complaint)
	expectDomainCode(t, err, "FORBIDDEN")

	got, err := svc.GetByID(context.Background(), ownerPrincipal(), complaint)
	require.NoError(t, err)
	assert.Equal(t, complaint, got.ID)

	got, err = svc.GetByID(context.Background(), adminPrincipal(), complaint)
	require.NoError(t, err)
	assert.Equal(t, complaint, got.ID)
}

func TestListForOwnerForcesOwnershipScope(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)
	stubRefs(users)

	status := domain.ComplaintStatusPending
	complaints.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(filter repository.ComplaintFilter) bool {
		return filter.SubmittedBy != nil && *filter.SubmittedBy == ownerID &&
			filter.Status != nil && *filter.Status == status &&
			filter.Limit == 10 && filter.Offset == 0
	})).Return([]domain.Complaint{
		{ID: complaint, SubmittedBy: ownerID, Status: status},
	}, nil)
	complaints.On("CountWithFilter", mock.Anything, mock.Anything).Return(int64(1), nil)

	svc := newComplaintService(complaints, users, new(MockAnalyzer), nil)
	items, total, err := svc.ListForOwner(context.Background(), ownerPrincipal(), service.OwnerFilter{Status: &status}, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Submitter)
	assert.Equal(t, ownerID, items[0].Submitter.ID)
	complaints.AssertExpectations(t)
}

func TestListForAdminRequiresAdminRole(t *testing.T) {
	svc := newComplaintService(new(MockComplaintRepository), new(MockUserRepository), new(MockAnalyzer), nil)

	_, _, err := svc.ListForAdmin(context.Background(), ownerPrincipal(), service.AdminFilter{}, 1, 10)
	expectDomainCode(t, err, "FORBIDDEN")
}

func TestListForAdminPaginates(t *testing.T) {
	complaints := new(MockComplaintRepository)
	users := new(MockUserRepository)

	complaints.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(filter repository.ComplaintFilter) bool {
		return filter.SubmittedBy == nil && filter.Limit == 5 && filter.Offset == 10
	})).Return([]domain.Complaint{}, nil)
	complaints.On("CountWithFilter", mock.Anything, mock.Anything).Return(int64(42), nil)

	svc := newComplaintService(complaints, users, new(MockAnalyzer), nil)
	items, total, err := svc.ListForAdmin(context.Background(), adminPrincipal(), service.AdminFilter{}, 3, 5)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(42), total)
	complaints.AssertExpectations(t)
}
