package domain

import (
	"context"
	"time"
)

// Application status constants as the backend reports them
const (
	ApplicationStatusApplied     = "applied"
	ApplicationStatusUnderReview = "under-review"
	ApplicationStatusInterviewed = "interviewed"
	ApplicationStatusHired       = "hired"
	ApplicationStatusRejected    = "rejected"
)

// Application represents a job application from the current candidate.
// Status is owned by the backend: applied → under-review → interviewed → hired / rejected
type Application struct {
	ID          string    `json:"id" validate:"required"`
	JobID       string    `json:"job_id" validate:"required"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Status      string    `json:"status"`
	AppliedDate time.Time `json:"applied_date"`
}

// ApplyRequest is the payload of an apply action
type ApplyRequest struct {
	ResumeURL   string `json:"resume_url,omitempty" validate:"omitempty,url"`
	CoverLetter string `json:"cover_letter,omitempty" validate:"max=5000"`
}

type ApplicationAPI interface {
	ListApplications(ctx context.Context, page PageRequest) (*Page[Application], error)
	Apply(ctx context.Context, jobID string, req ApplyRequest) (*Application, error)
}
