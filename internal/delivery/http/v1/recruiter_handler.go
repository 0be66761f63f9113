package v1

import (
	"net/http"

	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/internal/domain"
	"go-jobboard-client/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type RecruiterHandler struct {
	session domain.SessionUsecase
}

// RecruiterHome is the landing data of the recruiter area.
type RecruiterHome struct {
	Profile           domain.Profile `json:"profile"`
	CompanyVerified   bool           `json:"company_verified"`
	NeedsVerification bool           `json:"needs_verification"`
}

// NewRecruiterHandler registers the recruiter area. r must already be guarded
// for the recruiter role.
func NewRecruiterHandler(r *gin.RouterGroup, session domain.SessionUsecase) {
	handler := &RecruiterHandler{session: session}

	recruiter := r.Group("/recruiter")
	{
		recruiter.GET("/dashboard", handler.Dashboard)
	}
}

// Dashboard godoc
// @Summary      Recruiter dashboard
// @Tags         recruiter
// @Produce      json
// @Success      200  {object}  response.Response{data=RecruiterHome}
// @Failure      403  {object}  response.Response
// @Router       /recruiter/dashboard [get]
// @Security     BearerAuth
func (h *RecruiterHandler) Dashboard(c *gin.Context) {
	sess, ok := h.session.Current()
	if !ok {
		c.Error(apperror.NoSession())
		return
	}
	verified := sess.CompanyVerified != nil && *sess.CompanyVerified
	response.Success(c, http.StatusOK, "Dashboard", RecruiterHome{
		Profile:           sess.Profile,
		CompanyVerified:   verified,
		NeedsVerification: !verified || !sess.EmailVerified,
	})
}
