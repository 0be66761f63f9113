package usecase

import (
	"strings"

	"go-jobboard-client/internal/domain"
)

type StatusDomain string

const (
	StatusDomainApplication StatusDomain = "application"
	StatusDomainInterview   StatusDomain = "interview"
)

// Projection is how a backend status is shown. Rank orders statuses along
// their lifecycle; Terminal marks statuses that never change again.
type Projection struct {
	Status     string `json:"status"`
	Label      string `json:"label"`
	ColorClass string `json:"color_class"`
	IconKind   string `json:"icon"`
	Rank       int    `json:"rank"`
	Terminal   bool   `json:"terminal"`
}

var applicationProjections = map[string]Projection{
	domain.ApplicationStatusApplied:     {Status: "applied", Label: "Applied", ColorClass: "bg-blue-100 text-blue-800", IconKind: "clock", Rank: 1},
	domain.ApplicationStatusUnderReview: {Status: "interviewing", Label: "Interviewing", ColorClass: "bg-yellow-100 text-yellow-800", IconKind: "eye", Rank: 2},
	domain.ApplicationStatusInterviewed: {Status: "interviewed", Label: "Interviewed", ColorClass: "bg-purple-100 text-purple-800", IconKind: "calendar", Rank: 3},
	domain.ApplicationStatusHired:       {Status: "hired", Label: "Hired", ColorClass: "bg-green-100 text-green-800", IconKind: "check-circle", Rank: 4, Terminal: true},
	domain.ApplicationStatusRejected:    {Status: "rejected", Label: "Rejected", ColorClass: "bg-red-100 text-red-800", IconKind: "x-circle", Rank: 5, Terminal: true},
}

var interviewProjections = map[string]Projection{
	domain.InterviewStatusScheduled:   {Status: "scheduled", Label: "Scheduled", ColorClass: "bg-blue-100 text-blue-800", IconKind: "calendar", Rank: 1},
	domain.InterviewStatusRescheduled: {Status: "rescheduled", Label: "Rescheduled", ColorClass: "bg-yellow-100 text-yellow-800", IconKind: "refresh", Rank: 2},
	domain.InterviewStatusCompleted:   {Status: "completed", Label: "Completed", ColorClass: "bg-green-100 text-green-800", IconKind: "check-circle", Rank: 3, Terminal: true},
	domain.InterviewStatusCancelled:   {Status: "cancelled", Label: "Cancelled", ColorClass: "bg-red-100 text-red-800", IconKind: "x-circle", Rank: 4, Terminal: true},
	domain.InterviewStatusNoShow:      {Status: "no-show", Label: "No Show", ColorClass: "bg-gray-100 text-gray-800", IconKind: "alert-circle", Rank: 5, Terminal: true},
}

// Unknown statuses fall back to a neutral first-stage projection.
var defaultProjections = map[StatusDomain]Projection{
	StatusDomainApplication: {Status: "applied", Label: "Applied", ColorClass: "bg-gray-100 text-gray-800", IconKind: "clock"},
	StatusDomainInterview:   {Status: "scheduled", Label: "Scheduled", ColorClass: "bg-gray-100 text-gray-800", IconKind: "calendar"},
}

var statusAliases = map[string]string{
	"canceled":  domain.InterviewStatusCancelled,
	"noshow":    domain.InterviewStatusNoShow,
	"reviewing": domain.ApplicationStatusUnderReview,
	"in-review": domain.ApplicationStatusUnderReview,
}

// Project maps a raw backend status to its presentation. It is total: any
// input, including empty or unknown strings, yields a projection.
func Project(d StatusDomain, raw string) Projection {
	key := normalizeStatus(raw)
	var table map[string]Projection
	switch d {
	case StatusDomainApplication:
		table = applicationProjections
	case StatusDomainInterview:
		table = interviewProjections
	default:
		return defaultProjections[StatusDomainApplication]
	}
	if p, ok := table[key]; ok {
		return p
	}
	return defaultProjections[d]
}

func ProjectApplication(raw string) Projection {
	return Project(StatusDomainApplication, raw)
}

func ProjectInterview(raw string) Projection {
	return Project(StatusDomainInterview, raw)
}

func normalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	if alias, ok := statusAliases[s]; ok {
		return alias
	}
	return s
}
