package backend

import (
	"context"
	"net/http"
	"net/url"

	"go-jobboard-client/internal/domain"
)

type interviewAPI struct {
	*Client
}

func NewInterviewAPI(c *Client) domain.InterviewAPI {
	return &interviewAPI{Client: c}
}

func (a *interviewAPI) ListInterviews(ctx context.Context, filter domain.InterviewFilter, page domain.PageRequest) (*domain.Page[domain.Interview], error) {
	q := pageQuery(page)
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	data, err := a.do(ctx, call{
		method:   http.MethodGet,
		path:     "/v1/candidates/interviews",
		endpoint: "GET /v1/candidates/interviews",
		query:    q,
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return decodePage[domain.Interview](a.Client, "interviews.list", data, page.Page)
}

type notesRequest struct {
	CandidateNotes string `json:"candidate_notes"`
}

func (a *interviewAPI) UpdateCandidateNotes(ctx context.Context, interviewID, notes string) (*domain.Interview, error) {
	data, err := a.do(ctx, call{
		method:   http.MethodPatch,
		path:     "/v1/candidates/interviews/" + url.PathEscape(interviewID) + "/notes",
		endpoint: "PATCH /v1/candidates/interviews/:id/notes",
		body:     notesRequest{CandidateNotes: notes},
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	var interview domain.Interview
	if err := a.decodeObject("interviews.notes", data, &interview); err != nil {
		return nil, err
	}
	return &interview, nil
}
