package usecase

import (
	"context"

	"go-jobboard-client/internal/domain"

	"github.com/go-playground/validator/v10"
)

type WorkspaceDeps struct {
	Jobs         domain.JobAPI
	Applications domain.ApplicationAPI
	Interviews   domain.InterviewAPI
	Validate     *validator.Validate
	PageSize     int
	Options      CollectionOptions
}

// Workspace holds every synchronized collection of the signed-in candidate.
type Workspace struct {
	Jobs         *JobBoard
	Saved        *SavedJobsSync
	Applications *ApplicationSync
	Interviews   *InterviewSync
	Dashboard    *Dashboard
}

// NewWorkspace builds the collections and ties them to session. Every
// collection reports auth expiry to the session and is reset on logout.
func NewWorkspace(session domain.SessionUsecase, deps WorkspaceDeps) *Workspace {
	opts := deps.Options
	if session != nil {
		opts.OnAuthExpired = session.Expire
	}

	w := &Workspace{
		Jobs:         NewJobBoard(deps.Jobs, deps.PageSize, opts),
		Saved:        NewSavedJobsSync(deps.Jobs, opts),
		Applications: NewApplicationSync(deps.Applications, deps.Validate, deps.PageSize, opts),
		Interviews:   NewInterviewSync(deps.Interviews, deps.PageSize, opts),
	}
	w.Dashboard = NewDashboard(w.Saved, w.Applications, w.Interviews)

	if session != nil {
		session.OnTeardown(func(context.Context) { w.Reset() })
	}
	return w
}

// Abandon drops interest in every in-flight load.
func (w *Workspace) Abandon() {
	w.Jobs.Abandon()
	w.Saved.Abandon()
	w.Applications.Abandon()
	w.Interviews.Abandon()
}

func (w *Workspace) Reset() {
	w.Jobs.Reset()
	w.Saved.Reset()
	w.Applications.Reset()
	w.Interviews.Reset()
}

