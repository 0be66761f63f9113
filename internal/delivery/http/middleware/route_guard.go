package middleware

import (
	"net/http"
	"strings"

	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/usecase"

	"github.com/gin-gonic/gin"
)

// RouteGuard evaluates the guard decision for every request of a protected
// group. apiPrefix is stripped from the request path so "/v1/recruiter/..."
// is judged like the page "/recruiter/...".
func RouteGuard(session domain.SessionUsecase, routes usecase.Routes, apiPrefix string, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := usecase.GuardInput{
			Loading:      session.Loading(),
			Path:         appPath(c.Request.URL.RequestURI(), apiPrefix),
			RequiredRole: required,
		}
		if s, ok := session.Current(); ok {
			in.Session = &s
		}

		d := routes.Decide(in)
		switch d.State {
		case usecase.GuardLoading:
			c.Header("Retry-After", "1")
			response.Abort(c, http.StatusServiceUnavailable, "Session is still loading", d)
		case usecase.GuardDenied:
			status := http.StatusUnauthorized
			msg := "Please log in to continue"
			if d.Reason == usecase.DenyWrongRole {
				status = http.StatusForbidden
				msg = "This area is not available for your account"
			}
			response.Abort(c, status, msg, d)
		default:
			c.Set(string(domain.KeyUserID), in.Session.UserID)
			c.Set(string(domain.KeyUserEmail), in.Session.Email)
			c.Set(string(domain.KeyUserRole), string(in.Session.Role))
			c.Next()
		}
	}
}

func appPath(uri, prefix string) string {
	if prefix == "" {
		return uri
	}
	p := strings.TrimPrefix(uri, strings.TrimSuffix(prefix, "/"))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
