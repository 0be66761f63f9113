package usecase

import (
	"context"
	"slices"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/pkg/apperror"
)

const savedJobsCollection = "saved_jobs"

// SavedJobsSync keeps the candidate's saved set. Save and unsave are
// optimistic and reconciled with the membership the backend reports.
type SavedJobsSync struct {
	api domain.JobAPI
	col *Collection[domain.SavedJob]
	now func() time.Time
}

func NewSavedJobsSync(api domain.JobAPI, opts CollectionOptions) *SavedJobsSync {
	return &SavedJobsSync{
		api: api,
		col: NewCollection(savedJobsCollection, func(s domain.SavedJob) string { return s.JobID }, opts),
		now: time.Now,
	}
}

func (s *SavedJobsSync) Load(ctx context.Context) error {
	return s.col.Load(ctx, func(ctx context.Context, _ int) (*domain.Page[domain.SavedJob], error) {
		jobs, err := s.api.ListSavedJobs(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]domain.SavedJob, 0, len(jobs))
		for i := range jobs {
			j := jobs[i]
			items = append(items, domain.SavedJob{JobID: j.ID, Job: &j})
		}
		return &domain.Page[domain.SavedJob]{Items: items, Page: 1, TotalPages: 1}, nil
	})
}

// Save adds jobID to the set. job may be nil when only the id is known.
func (s *SavedJobsSync) Save(ctx context.Context, jobID string, job *domain.Job) error {
	if jobID == "" {
		return apperror.BadRequest("Job id is required")
	}
	entry := domain.SavedJob{JobID: jobID, Job: job, SavedAt: s.now()}
	if prev, ok := s.col.Find(jobID); ok && entry.Job == nil {
		entry.Job = prev.Job
	}
	return s.col.Optimistic(ctx, jobID, Outcome[domain.SavedJob]{Value: entry, Present: true},
		func(ctx context.Context) (Outcome[domain.SavedJob], error) {
			res, err := s.api.SaveJob(ctx, jobID)
			if err != nil {
				return Outcome[domain.SavedJob]{}, err
			}
			return Outcome[domain.SavedJob]{Value: entry, Present: res.Saved}, nil
		})
}

func (s *SavedJobsSync) Unsave(ctx context.Context, jobID string) error {
	if jobID == "" {
		return apperror.BadRequest("Job id is required")
	}
	kept, ok := s.col.Find(jobID)
	if !ok {
		kept = domain.SavedJob{JobID: jobID, SavedAt: s.now()}
	}
	return s.col.Optimistic(ctx, jobID, Outcome[domain.SavedJob]{Value: kept},
		func(ctx context.Context) (Outcome[domain.SavedJob], error) {
			res, err := s.api.UnsaveJob(ctx, jobID)
			if err != nil {
				return Outcome[domain.SavedJob]{}, err
			}
			return Outcome[domain.SavedJob]{Value: kept, Present: res.Saved}, nil
		})
}

// Toggle flips membership of jobID and returns the intended state.
func (s *SavedJobsSync) Toggle(ctx context.Context, jobID string, job *domain.Job) (bool, error) {
	if s.IsSaved(jobID) {
		return false, s.Unsave(ctx, jobID)
	}
	return true, s.Save(ctx, jobID, job)
}

func (s *SavedJobsSync) IsSaved(jobID string) bool {
	_, ok := s.col.Find(jobID)
	return ok
}

// IDs returns the saved set as a lookup map.
func (s *SavedJobsSync) IDs() map[string]bool {
	items := s.col.Items()
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it.JobID] = true
	}
	return out
}

// SortedIDs returns the saved ids in ascending order.
func (s *SavedJobsSync) SortedIDs() []string {
	ids := make([]string, 0)
	for id := range s.IDs() {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *SavedJobsSync) State(jobID string) RequestState[domain.SavedJob] {
	return s.col.State(jobID)
}

func (s *SavedJobsSync) View() View[domain.SavedJob] {
	return s.col.Snapshot()
}

func (s *SavedJobsSync) Abandon() { s.col.Abandon() }
func (s *SavedJobsSync) Reset()   { s.col.Reset() }
