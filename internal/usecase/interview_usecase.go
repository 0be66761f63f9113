package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/notify"
	"go-jobboard-client/pkg/apperror"
)

const (
	interviewsCollection = "interviews"
	maxNotesLength       = 5000
)

type InterviewView struct {
	domain.Interview
	Display Projection `json:"display"`
}

// InterviewSync keeps the candidate's interviews for the current filter.
type InterviewSync struct {
	api      domain.InterviewAPI
	col      *Collection[domain.Interview]
	notifier domain.Notifier
	pageSize int

	mu     sync.Mutex
	filter domain.InterviewFilter
}

func NewInterviewSync(api domain.InterviewAPI, pageSize int, opts CollectionOptions) *InterviewSync {
	return &InterviewSync{
		api:      api,
		col:      NewCollection(interviewsCollection, func(i domain.Interview) string { return i.ID }, opts),
		notifier: opts.Notifier,
		pageSize: pageSize,
	}
}

// Load replaces the list with the first page matching filter. Filter status
// is normalized the same way statuses are projected.
func (s *InterviewSync) Load(ctx context.Context, filter domain.InterviewFilter) error {
	if filter.Status != "" {
		filter.Status = normalizeStatus(filter.Status)
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return s.col.Load(ctx, s.fetcher(filter))
}

func (s *InterviewSync) LoadMore(ctx context.Context) error {
	return s.col.LoadMore(ctx, s.fetcher(s.Filter()))
}

func (s *InterviewSync) fetcher(filter domain.InterviewFilter) Fetcher[domain.Interview] {
	return func(ctx context.Context, page int) (*domain.Page[domain.Interview], error) {
		return s.api.ListInterviews(ctx, filter, domain.PageRequest{Page: page, PageSize: s.pageSize})
	}
}

func (s *InterviewSync) Filter() domain.InterviewFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *InterviewSync) matchesFilter(iv domain.Interview) bool {
	status := s.Filter().Status
	return status == "" || normalizeStatus(iv.Status) == status
}

// AddNotes writes the candidate's notes. The local interview only changes
// from the confirmed response.
func (s *InterviewSync) AddNotes(ctx context.Context, interviewID, notes string) (*domain.Interview, error) {
	interviewID = strings.TrimSpace(interviewID)
	if interviewID == "" {
		return nil, apperror.BadRequest("Interview id is required")
	}
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, apperror.BadRequest("Notes must be at most 5000 characters")
	}

	// an interview the active filter hides stays out of the list
	opts := PessimisticOptions[domain.Interview]{Admit: s.matchesFilter}
	updated, err := s.col.PessimisticWith(ctx, "notes:"+interviewID, opts, func(ctx context.Context) (domain.Interview, error) {
		iv, err := s.api.UpdateCandidateNotes(ctx, interviewID, notes)
		if err != nil {
			return domain.Interview{}, err
		}
		if iv.ID == "" {
			iv.ID = interviewID
		}
		return *iv, nil
	})
	if err != nil {
		return nil, err
	}
	notify.Success(s.notifier, interviewsCollection, "Notes saved")
	return &updated, nil
}

// Upcoming returns non-terminal interviews scheduled after now, soonest first.
func (s *InterviewSync) Upcoming(now time.Time) []domain.Interview {
	var out []domain.Interview
	for _, iv := range s.col.Items() {
		if ProjectInterview(iv.Status).Terminal || !iv.ScheduledAt.After(now) {
			continue
		}
		out = append(out, iv)
	}
	slices.SortStableFunc(out, func(a, b domain.Interview) int {
		return a.ScheduledAt.Compare(b.ScheduledAt)
	})
	return out
}

func (s *InterviewSync) Views() []InterviewView {
	items := s.col.Items()
	out := make([]InterviewView, 0, len(items))
	for _, iv := range items {
		out = append(out, InterviewView{Interview: iv, Display: ProjectInterview(iv.Status)})
	}
	return out
}

func (s *InterviewSync) View() View[domain.Interview] {
	return s.col.Snapshot()
}

func (s *InterviewSync) Abandon() { s.col.Abandon() }
func (s *InterviewSync) Reset() {
	s.mu.Lock()
	s.filter = domain.InterviewFilter{}
	s.mu.Unlock()
	s.col.Reset()
}
