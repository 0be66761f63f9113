package backend

import (
	"context"
	"net/http"
	"net/url"

	"go-jobboard-client/internal/domain"
)

type applicationAPI struct {
	*Client
}

func NewApplicationAPI(c *Client) domain.ApplicationAPI {
	return &applicationAPI{Client: c}
}

func (a *applicationAPI) ListApplications(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Application], error) {
	data, err := a.do(ctx, call{
		method:   http.MethodGet,
		path:     "/v1/candidates/applications",
		endpoint: "GET /v1/candidates/applications",
		query:    pageQuery(page),
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return decodePage[domain.Application](a.Client, "applications.list", data, page.Page)
}

func (a *applicationAPI) Apply(ctx context.Context, jobID string, req domain.ApplyRequest) (*domain.Application, error) {
	data, err := a.do(ctx, call{
		method:   http.MethodPost,
		path:     "/v1/candidates/jobs/" + url.PathEscape(jobID) + "/apply",
		endpoint: "POST /v1/candidates/jobs/:jobId/apply",
		body:     req,
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	var app domain.Application
	if err := a.decodeObject("applications.apply", data, &app); err != nil {
		return nil, err
	}
	return &app, nil
}
