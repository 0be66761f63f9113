package usecase

import (
	"context"
	"strings"
	"sync"

	"go-jobboard-client/internal/domain"
)

const jobsCollection = "jobs"

// JobBoard is the paginated job listing. Server-side query narrows what is
// fetched; ListingCriteria and SortKey refine it locally.
type JobBoard struct {
	api      domain.JobAPI
	col      *Collection[domain.Job]
	pageSize int

	mu    sync.Mutex
	query domain.JobQuery
}

func NewJobBoard(api domain.JobAPI, pageSize int, opts CollectionOptions) *JobBoard {
	return &JobBoard{
		api:      api,
		col:      NewCollection(jobsCollection, func(j domain.Job) string { return j.ID }, opts),
		pageSize: pageSize,
	}
}

func (b *JobBoard) Load(ctx context.Context, query domain.JobQuery) error {
	query.Term = strings.TrimSpace(query.Term)
	query.Location = strings.TrimSpace(query.Location)
	b.mu.Lock()
	b.query = query
	b.mu.Unlock()
	return b.col.Load(ctx, b.fetcher(query))
}

func (b *JobBoard) LoadMore(ctx context.Context) error {
	b.mu.Lock()
	query := b.query
	b.mu.Unlock()
	return b.col.LoadMore(ctx, b.fetcher(query))
}

func (b *JobBoard) fetcher(query domain.JobQuery) Fetcher[domain.Job] {
	return func(ctx context.Context, page int) (*domain.Page[domain.Job], error) {
		return b.api.ListJobs(ctx, query, domain.PageRequest{Page: page, PageSize: b.pageSize})
	}
}

func (b *JobBoard) Find(jobID string) (domain.Job, bool) {
	return b.col.Find(jobID)
}

// Listing returns the loaded jobs filtered and sorted. saved feeds the
// saved-first order and may be nil.
func (b *JobBoard) Listing(c ListingCriteria, key SortKey, saved map[string]bool) []domain.Job {
	return ApplyListing(b.col.Items(), c, key, saved)
}

func (b *JobBoard) View() View[domain.Job] {
	return b.col.Snapshot()
}

func (b *JobBoard) Abandon() { b.col.Abandon() }

func (b *JobBoard) Reset() {
	b.mu.Lock()
	b.query = domain.JobQuery{}
	b.mu.Unlock()
	b.col.Reset()
}
