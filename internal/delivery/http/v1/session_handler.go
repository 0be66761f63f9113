package v1

import (
	"net/http"
	"strings"

	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/usecase"
	"go-jobboard-client/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	session domain.SessionUsecase
	routes  usecase.Routes
}

func NewSessionHandler(public *gin.RouterGroup, protected *gin.RouterGroup, session domain.SessionUsecase, routes usecase.Routes, loginLimiter gin.HandlerFunc) {
	handler := &SessionHandler{session: session, routes: routes}

	s := public.Group("/session")
	{
		s.GET("", handler.GetSession)
		s.GET("/guard", handler.Guard)
		s.POST("/login", loginLimiter, handler.Login)
		s.POST("/logout", handler.Logout)
	}

	protected.PATCH("/session/profile", handler.UpdateProfile)
}

// SessionView is the UI's view of the current session. The token never leaves the gateway.
type SessionView struct {
	Authenticated bool            `json:"authenticated"`
	Loading       bool            `json:"loading"`
	User          *domain.Profile `json:"user,omitempty"`
	Home          string          `json:"home,omitempty"`
}

func (h *SessionHandler) view() SessionView {
	v := SessionView{Loading: h.session.Loading()}
	if s, ok := h.session.Current(); ok {
		p := s.Profile
		v.Authenticated = true
		v.User = &p
		v.Home = h.routes.HomeFor(p.Role)
	}
	return v
}

// GetSession godoc
// @Summary      Get the current session
// @Description  Returns the signed-in user, or authenticated=false. While the stored session is restoring, loading=true.
// @Tags         session
// @Produce      json
// @Success      200  {object}  response.Response{data=SessionView}
// @Router       /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	response.Success(c, http.StatusOK, "Session", h.view())
}

// LoginRequest is the gateway login payload.
type LoginRequest struct {
	domain.LoginRequest
	IntendedPath string `json:"intended_path"`
}

type LoginResponse struct {
	SessionView
	RedirectTo string `json:"redirect_to"`
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates against the backend, persists the session and returns where to go next
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  response.Response{data=LoginResponse}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	sess, err := h.session.Authenticate(c.Request.Context(), req.LoginRequest)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in", LoginResponse{
		SessionView: h.view(),
		RedirectTo:  h.routes.ResumeTarget(req.IntendedPath, sess.Role),
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session and every synchronized collection. Always succeeds.
// @Tags         session
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// UpdateProfile godoc
// @Summary      Update the stored profile
// @Description  Merges the given fields into the session profile and persists it
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProfilePatch  true  "Fields to change"
// @Success      200   {object}  response.Response{data=domain.Profile}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /session/profile [patch]
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(err)
		return
	}

	sess, err := h.session.UpdateProfile(c.Request.Context(), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", sess.Profile)
}

// Guard godoc
// @Summary      Evaluate the route guard
// @Description  Returns the navigation decision for a page path and required role
// @Tags         session
// @Produce      json
// @Param        path  query     string  true   "Requested page path"
// @Param        role  query     string  false  "Required role (candidate or recruiter)"
// @Success      200   {object}  response.Response{data=usecase.Decision}
// @Failure      400   {object}  response.Response
// @Router       /session/guard [get]
func (h *SessionHandler) Guard(c *gin.Context) {
	path := c.Query("path")
	if !strings.HasPrefix(path, "/") {
		c.Error(apperror.BadRequest("path must be an absolute page path"))
		return
	}

	in := usecase.GuardInput{
		Loading:      h.session.Loading(),
		Path:         path,
		RequiredRole: domain.ParseRole(c.Query("role")),
	}
	if s, ok := h.session.Current(); ok {
		in.Session = &s
	}
	response.Success(c, http.StatusOK, "Guard decision", h.routes.Decide(in))
}
