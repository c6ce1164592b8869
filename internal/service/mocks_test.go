package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/repository"
	"github.com/campuscare/complaint-service/internal/sentiment"
)

// MockComplaintRepository is a testify mock for repository.ComplaintRepository.
type MockComplaintRepository struct {
	mock.Mock
}

func (m *MockComplaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*domain.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintRepository) ListWithFilter(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	args := m.Called(ctx, filter)
	if c := args.Get(0); c != nil {
		return c.([]domain.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintRepository) CountWithFilter(ctx context.Context, filter repository.ComplaintFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockComplaintRepository) UpdateOwnerFields(ctx context.Context, id, ownerID string, patch repository.OwnerPatch) (*domain.Complaint, error) {
	args := m.Called(ctx, id, ownerID, patch)
	if c := args.Get(0); c != nil {
		return c.(*domain.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintRepository) ApplyStatusPatch(ctx context.Context, id string, patch repository.StatusPatch) (*domain.Complaint, error) {
	args := m.Called(ctx, id, patch)
	if c := args.Get(0); c != nil {
		return c.(*domain.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintRepository) AppendAdminNote(ctx context.Context, id string, note domain.AdminNote) (*domain.Complaint, error) {
	args := m.Called(ctx, id, note)
	if c := args.Get(0); c != nil {
		return c.(*domain.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserRepository is a testify mock for repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListWithFilter(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	if u := args.Get(0); u != nil {
		return u.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) CountWithFilter(ctx context.Context, filter repository.UserFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetRefsByIDs(ctx context.Context, ids []string) (map[string]domain.UserRef, error) {
	args := m.Called(ctx, ids)
	if refs := args.Get(0); refs != nil {
		return refs.(map[string]domain.UserRef), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAnalyticsRepository is a testify mock for repository.AnalyticsRepository.
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) GroupedCounts(ctx context.Context, dimension string) ([]repository.GroupCount, error) {
	args := m.Called(ctx, dimension)
	if gc := args.Get(0); gc != nil {
		return gc.([]repository.GroupCount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsRepository) AvgResolutionDays(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAnalyticsRepository) MonthlyCounts(ctx context.Context, limit int) ([]repository.MonthCount, error) {
	args := m.Called(ctx, limit)
	if mc := args.Get(0); mc != nil {
		return mc.([]repository.MonthCount), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAnalyzer is a testify mock for sentiment.Analyzer.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) (*sentiment.Result, error) {
	args := m.Called(ctx, text)
	if r := args.Get(0); r != nil {
		return r.(*sentiment.Result), args.Error(1)
	}
	return nil, args.Error(1)
}
