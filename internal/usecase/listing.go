package usecase

import (
	"cmp"
	"slices"
	"strings"

	"go-jobboard-client/internal/domain"
)

type SortKey string

const (
	SortSaved      SortKey = "saved"
	SortRecent     SortKey = "recent"
	SortSalaryHigh SortKey = "salary-high"
	SortSalaryLow  SortKey = "salary-low"
	SortCompany    SortKey = "company"
)

// ParseSortKey accepts the known keys; anything else sorts by recency.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortSaved, SortRecent, SortSalaryHigh, SortSalaryLow, SortCompany:
		return k, true
	default:
		return SortRecent, false
	}
}

// ListingCriteria filters a fetched job list locally. Empty fields match all.
type ListingCriteria struct {
	Term      string  `form:"q" json:"q"`
	Location  string  `form:"location" json:"location"`
	Type      string  `form:"type" json:"type" binding:"omitempty,job_type"`
	MinSalary float64 `form:"min_salary" json:"min_salary" binding:"gte=0"`
}

// FilterJobs returns the jobs matching every non-empty criterion, in input
// order. The input is not modified.
func FilterJobs(jobs []domain.Job, c ListingCriteria) []domain.Job {
	term := strings.ToLower(strings.TrimSpace(c.Term))
	loc := strings.ToLower(strings.TrimSpace(c.Location))
	jobType := normalizeJobType(c.Type)

	out := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if term != "" && !strings.Contains(strings.ToLower(j.Title), term) &&
			!strings.Contains(strings.ToLower(j.Company.Name), term) {
			continue
		}
		if loc != "" && !matchesLocation(j.Location, loc) {
			continue
		}
		if jobType != "" && normalizeJobType(j.Type) != jobType {
			continue
		}
		if c.MinSalary > 0 {
			ceiling, ok := salaryCeiling(j.Salary)
			if !ok || ceiling < c.MinSalary {
				continue
			}
		}
		out = append(out, j)
	}
	return out
}

func matchesLocation(l domain.Location, term string) bool {
	for _, f := range []string{l.City, l.State, l.Country} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return l.Remote && strings.Contains("remote", term)
}

func normalizeJobType(t string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(t)), "_", "-")
}

func salaryCeiling(s domain.Salary) (float64, bool) {
	switch {
	case s.Max != nil:
		return *s.Max, true
	case s.Min != nil:
		return *s.Min, true
	default:
		return 0, false
	}
}

// SortJobs returns a sorted copy. All orders are stable; jobs without the
// compared salary bound go last.
func SortJobs(jobs []domain.Job, key SortKey, saved map[string]bool) []domain.Job {
	out := slices.Clone(jobs)
	slices.SortStableFunc(out, comparator(key, saved))
	return out
}

// ApplyListing filters then sorts.
func ApplyListing(jobs []domain.Job, c ListingCriteria, key SortKey, saved map[string]bool) []domain.Job {
	return SortJobs(FilterJobs(jobs, c), key, saved)
}

func comparator(key SortKey, saved map[string]bool) func(a, b domain.Job) int {
	switch key {
	case SortSaved:
		return func(a, b domain.Job) int {
			if sa, sb := saved[a.ID], saved[b.ID]; sa != sb {
				if sa {
					return -1
				}
				return 1
			}
			return byRecent(a, b)
		}
	case SortSalaryHigh:
		return func(a, b domain.Job) int {
			return byOptional(a.Salary.Max, b.Salary.Max, true)
		}
	case SortSalaryLow:
		return func(a, b domain.Job) int {
			return byOptional(a.Salary.Min, b.Salary.Min, false)
		}
	case SortCompany:
		return func(a, b domain.Job) int {
			return cmp.Compare(strings.ToLower(a.Company.Name), strings.ToLower(b.Company.Name))
		}
	default:
		return byRecent
	}
}

func byRecent(a, b domain.Job) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

func byOptional(a, b *float64, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case desc:
		return cmp.Compare(*b, *a)
	default:
		return cmp.Compare(*a, *b)
	}
}
