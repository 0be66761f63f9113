package usecase_test

import (
	"context"
	"sync"

	"go-jobboard-client/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Load(ctx context.Context) (domain.Credentials, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Credentials), args.Error(1)
}

func (m *MockCredentialStore) Save(ctx context.Context, token string, profile domain.Profile) error {
	return m.Called(ctx, token, profile).Error(0)
}

func (m *MockCredentialStore) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginResult), args.Error(1)
}

type MockJobAPI struct {
	mock.Mock
}

func (m *MockJobAPI) ListJobs(ctx context.Context, query domain.JobQuery, page domain.PageRequest) (*domain.Page[domain.Job], error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Job]), args.Error(1)
}

func (m *MockJobAPI) ListSavedJobs(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobAPI) SaveJob(ctx context.Context, jobID string) (*domain.SaveResult, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SaveResult), args.Error(1)
}

func (m *MockJobAPI) UnsaveJob(ctx context.Context, jobID string) (*domain.SaveResult, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SaveResult), args.Error(1)
}

type MockApplicationAPI struct {
	mock.Mock
}

func (m *MockApplicationAPI) ListApplications(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Application], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Application]), args.Error(1)
}

func (m *MockApplicationAPI) Apply(ctx context.Context, jobID string, req domain.ApplyRequest) (*domain.Application, error) {
	args := m.Called(ctx, jobID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

type MockInterviewAPI struct {
	mock.Mock
}

func (m *MockInterviewAPI) ListInterviews(ctx context.Context, filter domain.InterviewFilter, page domain.PageRequest) (*domain.Page[domain.Interview], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Interview]), args.Error(1)
}

func (m *MockInterviewAPI) UpdateCandidateNotes(ctx context.Context, interviewID, notes string) (*domain.Interview, error) {
	args := m.Called(ctx, interviewID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

// recordingNotifier keeps every notification it receives.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) All() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.sent...)
}

func candidateProfile() domain.Profile {
	return domain.Profile{UserID: "u-1", DisplayName: "Ana", Email: "ana@example.com", Role: domain.RoleCandidate, ProfileCompleteness: 40}
}

func job(id, title string) domain.Job {
	return domain.Job{ID: id, Title: title}
}
