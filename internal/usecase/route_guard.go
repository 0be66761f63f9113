package usecase

import (
	"strings"

	"go-jobboard-client/internal/domain"
)

type GuardState string

const (
	GuardLoading GuardState = "loading"
	GuardAllowed GuardState = "allowed"
	GuardDenied  GuardState = "denied"
)

type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyWrongRole       DenyReason = "wrong_role"
)

// Routes names the pages the guard redirects to. RecruiterArea is the path
// prefix under which an anonymous visitor is sent to the recruiter login.
type Routes struct {
	CandidateLogin string `json:"candidate_login"`
	RecruiterLogin string `json:"recruiter_login"`
	CandidateHome  string `json:"candidate_home"`
	RecruiterHome  string `json:"recruiter_home"`
	CandidateArea  string `json:"candidate_area"`
	RecruiterArea  string `json:"recruiter_area"`
}

var DefaultRoutes = Routes{
	CandidateLogin: "/login",
	RecruiterLogin: "/recruiter/login",
	CandidateHome:  "/candidate/dashboard",
	RecruiterHome:  "/recruiter/dashboard",
	CandidateArea:  "/candidate",
	RecruiterArea:  "/recruiter",
}

type GuardInput struct {
	Session      *domain.Session
	Loading      bool
	Path         string
	RequiredRole domain.Role
}

// Decision is what to render for a protected view. IntendedPath is set on an
// unauthenticated denial so the caller can resume there after login.
type Decision struct {
	State        GuardState `json:"state"`
	Reason       DenyReason `json:"reason,omitempty"`
	RedirectTo   string     `json:"redirect_to,omitempty"`
	IntendedPath string     `json:"intended_path,omitempty"`
}

// Decide evaluates the guard with DefaultRoutes.
func Decide(in GuardInput) Decision {
	return DefaultRoutes.Decide(in)
}

// Decide is a pure function of its input. Loading always wins, so a persisted
// session that has not been restored yet never causes a redirect.
func (r Routes) Decide(in GuardInput) Decision {
	if in.Loading {
		return Decision{State: GuardLoading}
	}
	if in.Session == nil {
		return Decision{
			State:        GuardDenied,
			Reason:       DenyUnauthenticated,
			RedirectTo:   r.LoginFor(in.Path),
			IntendedPath: in.Path,
		}
	}
	if in.RequiredRole.Valid() && in.Session.Role != in.RequiredRole {
		return Decision{
			State:      GuardDenied,
			Reason:     DenyWrongRole,
			RedirectTo: r.HomeFor(in.Session.Role),
		}
	}
	return Decision{State: GuardAllowed}
}

func (r Routes) LoginFor(path string) string {
	if r.AreaOf(path) == domain.RoleRecruiter {
		return r.RecruiterLogin
	}
	return r.CandidateLogin
}

func (r Routes) HomeFor(role domain.Role) string {
	if role == domain.RoleRecruiter {
		return r.RecruiterHome
	}
	return r.CandidateHome
}

// AreaOf reports which role's area path lies in, or RoleNone.
func (r Routes) AreaOf(path string) domain.Role {
	switch {
	case underPrefix(path, r.RecruiterArea):
		return domain.RoleRecruiter
	case underPrefix(path, r.CandidateArea):
		return domain.RoleCandidate
	default:
		return domain.RoleNone
	}
}

// ResumeTarget picks where to go after a login: the remembered path when it is
// a local path the role may open, otherwise the role's home.
func (r Routes) ResumeTarget(intended string, role domain.Role) string {
	if !isLocalPath(intended) || intended == r.CandidateLogin || intended == r.RecruiterLogin {
		return r.HomeFor(role)
	}
	if area := r.AreaOf(intended); area != domain.RoleNone && area != role {
		return r.HomeFor(role)
	}
	return intended
}

func underPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	p := stripQuery(path)
	return p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/")
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
