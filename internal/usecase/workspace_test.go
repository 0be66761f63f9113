package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/usecase"
	"go-jobboard-client/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type workspaceFixture struct {
	store   *MockCredentialStore
	jobs    *MockJobAPI
	apps    *MockApplicationAPI
	ivs     *MockInterviewAPI
	session *usecase.SessionManager
	ws      *usecase.Workspace
}

func newWorkspaceFixture(t *testing.T) *workspaceFixture {
	t.Helper()
	f := &workspaceFixture{
		store: new(MockCredentialStore),
		jobs:  new(MockJobAPI),
		apps:  new(MockApplicationAPI),
		ivs:   new(MockInterviewAPI),
	}
	f.store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.store.On("Clear", mock.Anything).Return(nil)

	f.session = usecase.NewSessionManager(f.store, nil, usecase.SessionOptions{})
	require.NoError(t, f.session.Login(context.Background(), candidateProfile(), "tok"))

	f.ws = usecase.NewWorkspace(f.session, usecase.WorkspaceDeps{
		Jobs:         f.jobs,
		Applications: f.apps,
		Interviews:   f.ivs,
		PageSize:     10,
		Options:      usecase.CollectionOptions{Timeout: time.Second},
	})
	return f
}

func TestDashboard_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Should keep a failure local to its collection", func(t *testing.T) {
		f := newWorkspaceFixture(t)
		f.jobs.On("ListSavedJobs", mock.Anything).Return([]domain.Job{job("A", "Alpha")}, nil)
		f.apps.On("ListApplications", mock.Anything, mock.Anything).Return(nil, apperror.Fetch("Service unavailable", errors.New("503")))
		f.ivs.On("ListInterviews", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.Page[domain.Interview]{Items: []domain.Interview{}, Page: 1, TotalPages: 1}, nil)

		errs := f.ws.Dashboard.Load(ctx)
		sess, _ := f.session.Current()
		summary := f.ws.Dashboard.Summary(sess.Profile, errs)

		assert.Len(t, errs, 1)
		assert.Contains(t, summary.Errors, "applications")
		assert.Equal(t, 1, summary.SavedJobs)
		assert.Equal(t, 40, summary.ProfileCompleteness)
		assert.NotNil(t, summary.UpcomingInterviews)
		assert.Equal(t, domain.RoleCandidate, f.session.RoleOf())
	})

	t.Run("Should expire the session on a rejected token", func(t *testing.T) {
		f := newWorkspaceFixture(t)
		f.jobs.On("ListSavedJobs", mock.Anything).Return(nil, apperror.AuthExpired("Invalid token"))
		f.apps.On("ListApplications", mock.Anything, mock.Anything).Return(&domain.Page[domain.Application]{Page: 1, TotalPages: 1}, nil)
		f.ivs.On("ListInterviews", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.Page[domain.Interview]{Page: 1, TotalPages: 1}, nil)

		f.ws.Dashboard.Load(ctx)

		assert.Equal(t, domain.RoleNone, f.session.RoleOf())
		assert.Empty(t, f.session.Token())
	})
}

func TestWorkspace_Teardown(t *testing.T) {
	ctx := context.Background()

	t.Run("Should clear every collection on logout", func(t *testing.T) {
		f := newWorkspaceFixture(t)
		f.jobs.On("ListSavedJobs", mock.Anything).Return([]domain.Job{job("A", "Alpha")}, nil)
		f.jobs.On("ListJobs", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.Page[domain.Job]{Items: []domain.Job{job("J", "Go Engineer")}, Page: 1, TotalPages: 3}, nil)

		require.NoError(t, f.ws.Saved.Load(ctx))
		require.NoError(t, f.ws.Jobs.Load(ctx, domain.JobQuery{Term: " go "}))
		assert.True(t, f.ws.Jobs.View().HasMore)

		f.session.Logout(ctx)

		assert.Empty(t, f.ws.Saved.IDs())
		assert.Empty(t, f.ws.Jobs.View().Items)
		assert.False(t, f.ws.Jobs.View().Loaded)
	})

	t.Run("Should filter and sort the loaded board", func(t *testing.T) {
		f := newWorkspaceFixture(t)
		f.jobs.On("ListJobs", mock.Anything, domain.JobQuery{Term: "engineer"}, domain.PageRequest{Page: 1, PageSize: 10}).
			Return(&domain.Page[domain.Job]{Items: []domain.Job{
				{ID: "1", Title: "Go Engineer", Company: domain.Company{Name: "Zeta"}},
				{ID: "2", Title: "Rust Engineer", Company: domain.Company{Name: "alpha"}},
			}, Page: 1, TotalPages: 1}, nil)

		require.NoError(t, f.ws.Jobs.Load(ctx, domain.JobQuery{Term: "engineer"}))
		got := f.ws.Jobs.Listing(usecase.ListingCriteria{}, usecase.SortCompany, nil)
		assert.Equal(t, []string{"2", "1"}, ids(got))
	})
}
