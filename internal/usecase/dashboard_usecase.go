package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-jobboard-client/internal/domain"

	"golang.org/x/sync/errgroup"
)

type DashboardSummary struct {
	SavedJobs           int                `json:"saved_jobs"`
	Applications        ApplicationStats   `json:"applications"`
	UpcomingInterviews  []domain.Interview `json:"upcoming_interviews"`
	ProfileCompleteness int                `json:"profile_completeness"`
	// Errors holds the failure of each collection that could not load.
	Errors map[string]string `json:"errors,omitempty"`
}

// Dashboard loads the candidate's three collections side by side.
type Dashboard struct {
	Saved        *SavedJobsSync
	Applications *ApplicationSync
	Interviews   *InterviewSync
	now          func() time.Time
}

func NewDashboard(saved *SavedJobsSync, apps *ApplicationSync, interviews *InterviewSync) *Dashboard {
	return &Dashboard{Saved: saved, Applications: apps, Interviews: interviews, now: time.Now}
}

// Load fetches all collections concurrently. A failure stays local to its
// collection: the others still load and the summary reports what failed.
func (d *Dashboard) Load(ctx context.Context) map[string]error {
	var (
		mu   sync.Mutex
		errs = make(map[string]error)
	)
	record := func(name string, err error) {
		if err == nil || errors.Is(err, ErrSuperseded) {
			return
		}
		mu.Lock()
		errs[name] = err
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		record(savedJobsCollection, d.Saved.Load(ctx))
		return nil
	})
	g.Go(func() error {
		record(applicationsCollection, d.Applications.Load(ctx))
		return nil
	})
	g.Go(func() error {
		record(interviewsCollection, d.Interviews.Load(ctx, domain.InterviewFilter{}))
		return nil
	})
	_ = g.Wait()
	return errs
}

func (d *Dashboard) Summary(profile domain.Profile, errs map[string]error) DashboardSummary {
	s := DashboardSummary{
		SavedJobs:           len(d.Saved.IDs()),
		Applications:        d.Applications.Stats(),
		UpcomingInterviews:  d.Interviews.Upcoming(d.now()),
		ProfileCompleteness: profile.ProfileCompleteness,
	}
	if s.UpcomingInterviews == nil {
		s.UpcomingInterviews = []domain.Interview{}
	}
	if len(errs) > 0 {
		s.Errors = make(map[string]string, len(errs))
		for name, err := range errs {
			s.Errors[name] = err.Error()
		}
	}
	return s
}
