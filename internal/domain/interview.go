package domain

import (
	"context"
	"time"
)

const (
	InterviewTypeVideo    = "video"
	InterviewTypePhone    = "phone"
	InterviewTypeInPerson = "in-person"
)

const (
	InterviewStatusScheduled   = "scheduled"
	InterviewStatusRescheduled = "rescheduled"
	InterviewStatusCompleted   = "completed"
	InterviewStatusCancelled   = "cancelled"
	InterviewStatusNoShow      = "no-show"
)

type InterviewNotes struct {
	CandidateNotes string `json:"candidate_notes"`
	RecruiterNotes string `json:"recruiter_notes"`
}

// Interview is created by a recruiter. The candidate only writes CandidateNotes.
type Interview struct {
	ID           string         `json:"id" validate:"required"`
	JobRef       string         `json:"job_id"`
	RecruiterRef string         `json:"recruiter_id"`
	Title        string         `json:"title"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	ScheduledAt  time.Time      `json:"scheduled_at"`
	Notes        InterviewNotes `json:"notes"`
}

// InterviewFilter narrows the interview listing; empty Status means all.
type InterviewFilter struct {
	Status string `form:"status"`
}

type InterviewAPI interface {
	ListInterviews(ctx context.Context, filter InterviewFilter, page PageRequest) (*Page[Interview], error)
	UpdateCandidateNotes(ctx context.Context, interviewID, notes string) (*Interview, error)
}
