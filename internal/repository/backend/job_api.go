package backend

import (
	"context"
	"net/http"
	"net/url"

	"go-jobboard-client/internal/domain"
)

type jobAPI struct {
	*Client
}

func NewJobAPI(c *Client) domain.JobAPI {
	return &jobAPI{Client: c}
}

func (a *jobAPI) ListJobs(ctx context.Context, query domain.JobQuery, page domain.PageRequest) (*domain.Page[domain.Job], error) {
	q := pageQuery(page)
	if query.Term != "" {
		q.Set("q", query.Term)
	}
	if query.Location != "" {
		q.Set("location", query.Location)
	}
	if query.Type != "" {
		q.Set("type", query.Type)
	}

	data, err := a.do(ctx, call{
		method:   http.MethodGet,
		path:     "/v1/jobs",
		endpoint: "GET /v1/jobs",
		query:    q,
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return decodePage[domain.Job](a.Client, "jobs.list", data, page.Page)
}

func (a *jobAPI) ListSavedJobs(ctx context.Context) ([]domain.Job, error) {
	data, err := a.do(ctx, call{
		method:   http.MethodGet,
		path:     "/v1/candidates/saved-jobs",
		endpoint: "GET /v1/candidates/saved-jobs",
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Job](a.Client, "jobs.saved", data)
}

func (a *jobAPI) SaveJob(ctx context.Context, jobID string) (*domain.SaveResult, error) {
	return a.toggle(ctx, http.MethodPost, jobID)
}

func (a *jobAPI) UnsaveJob(ctx context.Context, jobID string) (*domain.SaveResult, error) {
	return a.toggle(ctx, http.MethodDelete, jobID)
}

func (a *jobAPI) toggle(ctx context.Context, method, jobID string) (*domain.SaveResult, error) {
	data, err := a.do(ctx, call{
		method:   method,
		path:     "/v1/candidates/saved-jobs/" + url.PathEscape(jobID),
		endpoint: method + " /v1/candidates/saved-jobs/:jobId",
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	var result domain.SaveResult
	if err := a.decodeObject("jobs.toggle", data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
