package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

// Job types as the backend reports them
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeFreelance  = "freelance"
)

type Company struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Remote  bool   `json:"remote"`
}

type Salary struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

type Job struct {
	ID                  string     `json:"id" validate:"required"`
	Title               string     `json:"title" validate:"required"`
	Company             Company    `json:"company"`
	Location            Location   `json:"location"`
	Salary              Salary     `json:"salary"`
	Type                string     `json:"type" validate:"omitempty,job_type"`
	Skills              []string   `json:"skills"`
	Description         string     `json:"description,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
}

// SavedJob is one member of the candidate's saved set. Job is nil when the
// backend only reported the identifier.
type SavedJob struct {
	JobID   string    `json:"job_id" validate:"required"`
	Job     *Job      `json:"job,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveResult is the backend's authoritative membership after a toggle.
type SaveResult struct {
	JobID string `json:"job_id" validate:"required"`
	Saved bool   `json:"saved"`
}

// JobQuery is the server-side filter for the paginated job listing.
type JobQuery struct {
	Term     string `form:"q"`
	Location string `form:"location"`
	Type     string `form:"type"`
}

// PageRequest selects one page of a collection.
type PageRequest struct {
	Page     int
	PageSize int
}

// Page is one slice of a paginated collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

type JobAPI interface {
	ListJobs(ctx context.Context, query JobQuery, page PageRequest) (*Page[Job], error)
	ListSavedJobs(ctx context.Context) ([]Job, error)
	SaveJob(ctx context.Context, jobID string) (*SaveResult, error)
	UnsaveJob(ctx context.Context, jobID string) (*SaveResult, error)
}
