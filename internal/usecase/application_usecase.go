package usecase

import (
	"context"
	"slices"
	"strings"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/notify"
	"go-jobboard-client/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

const applicationsCollection = "applications"

// ApplicationView pairs an application with its display projection.
type ApplicationView struct {
	domain.Application
	Display Projection `json:"display"`
}

type ApplicationStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Active   int            `json:"active"`
	Terminal int            `json:"terminal"`
}

// ApplicationSync keeps the candidate's applications. Apply is pessimistic:
// the list only changes from a confirmed response.
type ApplicationSync struct {
	api      domain.ApplicationAPI
	col      *Collection[domain.Application]
	notifier domain.Notifier
	validate *validator.Validate
	pageSize int
}

func NewApplicationSync(api domain.ApplicationAPI, validate *validator.Validate, pageSize int, opts CollectionOptions) *ApplicationSync {
	return &ApplicationSync{
		api:      api,
		col:      NewCollection(applicationsCollection, func(a domain.Application) string { return a.ID }, opts),
		notifier: opts.Notifier,
		validate: validate,
		pageSize: pageSize,
	}
}

func (s *ApplicationSync) fetch(ctx context.Context, page int) (*domain.Page[domain.Application], error) {
	return s.api.ListApplications(ctx, domain.PageRequest{Page: page, PageSize: s.pageSize})
}

func (s *ApplicationSync) Load(ctx context.Context) error {
	return s.col.Load(ctx, s.fetch)
}

func (s *ApplicationSync) LoadMore(ctx context.Context) error {
	return s.col.LoadMore(ctx, s.fetch)
}

// Apply submits an application for jobID.
func (s *ApplicationSync) Apply(ctx context.Context, jobID string, req domain.ApplyRequest) (*domain.Application, error) {
	// 1. Validate input
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, apperror.BadRequest("Job id is required")
	}
	if s.validate != nil {
		if err := s.validate.Struct(req); err != nil {
			return nil, apperror.Validation("Invalid application", err)
		}
	}

	// 2. Submit; refused when an application for the job is already held, and a
	// second submit for the same job while this one is pending is rejected
	opts := PessimisticOptions[domain.Application]{
		Check: func(items []domain.Application) error {
			if slices.ContainsFunc(items, appliedTo(jobID)) {
				return apperror.Conflict("You have already applied to this job")
			}
			return nil
		},
	}
	app, err := s.col.PessimisticWith(ctx, "apply:"+jobID, opts, func(ctx context.Context) (domain.Application, error) {
		created, err := s.api.Apply(ctx, jobID, req)
		if err != nil {
			return domain.Application{}, err
		}
		if created.JobID == "" {
			created.JobID = jobID
		}
		return *created, nil
	})
	if err != nil {
		return nil, err
	}

	notify.Success(s.notifier, applicationsCollection, "Application submitted")
	return &app, nil
}

func (s *ApplicationSync) HasApplied(jobID string) bool {
	_, ok := s.col.FindFunc(appliedTo(jobID))
	return ok
}

func appliedTo(jobID string) func(domain.Application) bool {
	return func(a domain.Application) bool { return a.JobID == jobID }
}

// ApplyState reports the request state of the apply action for jobID.
func (s *ApplicationSync) ApplyState(jobID string) RequestState[domain.Application] {
	return s.col.State("apply:" + jobID)
}

func (s *ApplicationSync) Views() []ApplicationView {
	items := s.col.Items()
	out := make([]ApplicationView, 0, len(items))
	for _, a := range items {
		out = append(out, ApplicationView{Application: a, Display: ProjectApplication(a.Status)})
	}
	return out
}

func (s *ApplicationSync) Stats() ApplicationStats {
	stats := ApplicationStats{ByStatus: make(map[string]int)}
	for _, a := range s.col.Items() {
		p := ProjectApplication(a.Status)
		stats.Total++
		stats.ByStatus[p.Status]++
		if p.Terminal {
			stats.Terminal++
		} else {
			stats.Active++
		}
	}
	return stats
}

func (s *ApplicationSync) View() View[domain.Application] {
	return s.col.Snapshot()
}

func (s *ApplicationSync) Abandon() { s.col.Abandon() }
func (s *ApplicationSync) Reset()   { s.col.Reset() }
