package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/usecase"
	"go-jobboard-client/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	ws      *usecase.Workspace
	session domain.SessionUsecase
	now     func() time.Time
}

// NewCandidateHandler registers the candidate area. r must already be guarded
// for the candidate role.
func NewCandidateHandler(r *gin.RouterGroup, ws *usecase.Workspace, session domain.SessionUsecase) {
	handler := &CandidateHandler{ws: ws, session: session, now: time.Now}

	candidate := r.Group("/candidate")
	{
		candidate.GET("/dashboard", handler.Dashboard)

		candidate.GET("/jobs", handler.ListJobs)
		candidate.POST("/jobs/more", handler.LoadMoreJobs)
		candidate.POST("/jobs/:jobId/apply", handler.Apply)

		candidate.GET("/saved-jobs", handler.ListSavedJobs)
		candidate.POST("/saved-jobs/:jobId", handler.SaveJob)
		candidate.DELETE("/saved-jobs/:jobId", handler.UnsaveJob)

		candidate.GET("/applications", handler.ListApplications)
		candidate.POST("/applications/more", handler.LoadMoreApplications)

		candidate.GET("/interviews", handler.ListInterviews)
		candidate.POST("/interviews/more", handler.LoadMoreInterviews)
		candidate.PATCH("/interviews/:id/notes", handler.UpdateNotes)
	}
}

// loadFailed reports whether err must fail the request. Collection errors
// stay local: the last known items are returned with the error flag set.
func loadFailed(c *gin.Context, err error) bool {
	if err == nil || errors.Is(err, usecase.ErrSuperseded) {
		return false
	}
	switch apperror.KindOf(err) {
	case apperror.KindAuthExpired, apperror.KindNoSession:
		c.Error(err)
		return true
	}
	return false
}

func wantsRefresh(c *gin.Context, loaded bool) bool {
	return !loaded || c.Query("refresh") == "true"
}

// JobListing is a page of the job board after local filtering and sorting.
type JobListing struct {
	Items      []domain.Job    `json:"items"`
	Sort       usecase.SortKey `json:"sort"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	HasMore    bool            `json:"has_more"`
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
	Saved      map[string]bool `json:"saved"`
}

type listJobsQuery struct {
	domain.JobQuery
	MinSalary float64 `form:"min_salary" binding:"gte=0"`
	Sort      string  `form:"sort"`
	Refresh   bool    `form:"refresh"`
}

// ListJobs godoc
// @Summary      List jobs
// @Description  Loads the job board (server filters q, location, type) and applies the local filter and sort
// @Tags         candidate
// @Produce      json
// @Param        q           query     string  false  "Title or company"
// @Param        location    query     string  false  "City, state, country or remote"
// @Param        type        query     string  false  "Job type"
// @Param        min_salary  query     number  false  "Minimum salary ceiling"
// @Param        sort        query     string  false  "saved, recent, salary-high, salary-low, company"
// @Param        refresh     query     bool    false  "Reload from the backend"
// @Success      200         {object}  response.Response{data=JobListing}
// @Failure      401         {object}  response.Response
// @Router       /candidate/jobs [get]
// @Security     BearerAuth
func (h *CandidateHandler) ListJobs(c *gin.Context) {
	var q listJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	if q.Refresh || !h.ws.Jobs.View().Loaded || c.Query("q") != "" || c.Query("location") != "" || c.Query("type") != "" {
		if err := h.ws.Jobs.Load(c.Request.Context(), q.JobQuery); loadFailed(c, err) {
			return
		}
	}
	response.Success(c, http.StatusOK, "Jobs", h.listing(q))
}

func (h *CandidateHandler) listing(q listJobsQuery) JobListing {
	sortKey, _ := usecase.ParseSortKey(q.Sort)
	saved := h.ws.Saved.IDs()
	view := h.ws.Jobs.View()
	criteria := usecase.ListingCriteria{
		Term:      q.Term,
		Location:  q.Location,
		Type:      q.Type,
		MinSalary: q.MinSalary,
	}
	return JobListing{
		Items:      h.ws.Jobs.Listing(criteria, sortKey, saved),
		Sort:       sortKey,
		Page:       view.Page,
		TotalPages: view.TotalPages,
		HasMore:    view.HasMore,
		Loading:    view.Loading,
		Error:      view.Error,
		Saved:      saved,
	}
}

// LoadMoreJobs godoc
// @Summary      Load the next page of jobs
// @Tags         candidate
// @Produce      json
// @Param        sort  query     string  false  "Sort key"
// @Success      200   {object}  response.Response{data=JobListing}
// @Router       /candidate/jobs/more [post]
// @Security     BearerAuth
func (h *CandidateHandler) LoadMoreJobs(c *gin.Context) {
	var q listJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}
	if err := h.ws.Jobs.LoadMore(c.Request.Context()); loadFailed(c, err) {
		return
	}
	response.Success(c, http.StatusOK, "Jobs", h.listing(q))
}

// ListSavedJobs godoc
// @Summary      List saved jobs
// @Tags         candidate
// @Produce      json
// @Param        refresh  query     bool  false  "Reload from the backend"
// @Success      200      {object}  response.Response{data=usecase.View[domain.SavedJob]}
// @Router       /candidate/saved-jobs [get]
// @Security     BearerAuth
func (h *CandidateHandler) ListSavedJobs(c *gin.Context) {
	if wantsRefresh(c, h.ws.Saved.View().Loaded) {
		if err := h.ws.Saved.Load(c.Request.Context()); loadFailed(c, err) {
			return
		}
	}
	response.Success(c, http.StatusOK, "Saved jobs", h.ws.Saved.View())
}

type SaveState struct {
	JobID string `json:"job_id"`
	Saved bool   `json:"saved"`
}

// SaveJob godoc
// @Summary      Save a job
// @Tags         candidate
// @Produce      json
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response{data=SaveState}
// @Failure      502    {object}  response.Response
// @Router       /candidate/saved-jobs/{jobId} [post]
// @Security     BearerAuth
func (h *CandidateHandler) SaveJob(c *gin.Context) {
	jobID := c.Param("jobId")
	var job *domain.Job
	if j, ok := h.ws.Jobs.Find(jobID); ok {
		job = &j
	}

	if err := h.ws.Saved.Save(c.Request.Context(), jobID, job); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job saved", SaveState{JobID: jobID, Saved: h.ws.Saved.IsSaved(jobID)})
}

// UnsaveJob godoc
// @Summary      Remove a saved job
// @Tags         candidate
// @Produce      json
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response{data=SaveState}
// @Failure      502    {object}  response.Response
// @Router       /candidate/saved-jobs/{jobId} [delete]
// @Security     BearerAuth
func (h *CandidateHandler) UnsaveJob(c *gin.Context) {
	jobID := c.Param("jobId")
	if err := h.ws.Saved.Unsave(c.Request.Context(), jobID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job removed", SaveState{JobID: jobID, Saved: h.ws.Saved.IsSaved(jobID)})
}

type ApplicationList struct {
	Items      []usecase.ApplicationView `json:"items"`
	Stats      usecase.ApplicationStats  `json:"stats"`
	Page       int                       `json:"page"`
	TotalPages int                       `json:"total_pages"`
	HasMore    bool                      `json:"has_more"`
	Error      string                    `json:"error,omitempty"`
}

func (h *CandidateHandler) applications() ApplicationList {
	view := h.ws.Applications.View()
	return ApplicationList{
		Items:      h.ws.Applications.Views(),
		Stats:      h.ws.Applications.Stats(),
		Page:       view.Page,
		TotalPages: view.TotalPages,
		HasMore:    view.HasMore,
		Error:      view.Error,
	}
}

// ListApplications godoc
// @Summary      List my applications
// @Tags         candidate
// @Produce      json
// @Param        refresh  query     bool  false  "Reload from the backend"
// @Success      200      {object}  response.Response{data=ApplicationList}
// @Router       /candidate/applications [get]
// @Security     BearerAuth
func (h *CandidateHandler) ListApplications(c *gin.Context) {
	if wantsRefresh(c, h.ws.Applications.View().Loaded) {
		if err := h.ws.Applications.Load(c.Request.Context()); loadFailed(c, err) {
			return
		}
	}
	response.Success(c, http.StatusOK, "Applications", h.applications())
}

// LoadMoreApplications godoc
// @Summary      Load the next page of applications
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  response.Response{data=ApplicationList}
// @Router       /candidate/applications/more [post]
// @Security     BearerAuth
func (h *CandidateHandler) LoadMoreApplications(c *gin.Context) {
	if err := h.ws.Applications.LoadMore(c.Request.Context()); loadFailed(c, err) {
		return
	}
	response.Success(c, http.StatusOK, "Applications", h.applications())
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Submits an application. A second submit for the same job while one is pending is refused.
// @Tags         candidate
// @Accept       json
// @Produce      json
// @Param        jobId  path      string               true   "Job ID"
// @Param        body   body      domain.ApplyRequest  false  "Application data"
// @Success      201    {object}  response.Response{data=usecase.ApplicationView}
// @Failure      409    {object}  response.Response
// @Failure      502    {object}  response.Response
// @Router       /candidate/jobs/{jobId}/apply [post]
// @Security     BearerAuth
func (h *CandidateHandler) Apply(c *gin.Context) {
	var req domain.ApplyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(err)
			return
		}
	}

	app, err := h.ws.Applications.Apply(c.Request.Context(), c.Param("jobId"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted", usecase.ApplicationView{
		Application: *app,
		Display:     usecase.ProjectApplication(app.Status),
	})
}

type InterviewList struct {
	Items      []usecase.InterviewView `json:"items"`
	Upcoming   int                     `json:"upcoming"`
	Filter     string                  `json:"filter,omitempty"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"total_pages"`
	HasMore    bool                    `json:"has_more"`
	Error      string                  `json:"error,omitempty"`
}

func (h *CandidateHandler) interviews() InterviewList {
	view := h.ws.Interviews.View()
	return InterviewList{
		Items:      h.ws.Interviews.Views(),
		Upcoming:   len(h.ws.Interviews.Upcoming(h.now())),
		Filter:     h.ws.Interviews.Filter().Status,
		Page:       view.Page,
		TotalPages: view.TotalPages,
		HasMore:    view.HasMore,
		Error:      view.Error,
	}
}

// ListInterviews godoc
// @Summary      List my interviews
// @Tags         candidate
// @Produce      json
// @Param        status   query     string  false  "Status filter"
// @Param        refresh  query     bool    false  "Reload from the backend"
// @Success      200      {object}  response.Response{data=InterviewList}
// @Router       /candidate/interviews [get]
// @Security     BearerAuth
func (h *CandidateHandler) ListInterviews(c *gin.Context) {
	var filter domain.InterviewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(err)
		return
	}
	changed := !strings.EqualFold(filter.Status, h.ws.Interviews.Filter().Status)
	if changed || wantsRefresh(c, h.ws.Interviews.View().Loaded) {
		if err := h.ws.Interviews.Load(c.Request.Context(), filter); loadFailed(c, err) {
			return
		}
	}
	response.Success(c, http.StatusOK, "Interviews", h.interviews())
}

// LoadMoreInterviews godoc
// @Summary      Load the next page of interviews
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  response.Response{data=InterviewList}
// @Router       /candidate/interviews/more [post]
// @Security     BearerAuth
func (h *CandidateHandler) LoadMoreInterviews(c *gin.Context) {
	if err := h.ws.Interviews.LoadMore(c.Request.Context()); loadFailed(c, err) {
		return
	}
	response.Success(c, http.StatusOK, "Interviews", h.interviews())
}

type NotesRequest struct {
	CandidateNotes string `json:"candidate_notes" binding:"max=5000"`
}

// UpdateNotes godoc
// @Summary      Update my interview notes
// @Tags         candidate
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Interview ID"
// @Param        body  body      NotesRequest  true  "Notes"
// @Success      200   {object}  response.Response{data=usecase.InterviewView}
// @Failure      400   {object}  response.Response
// @Failure      502   {object}  response.Response
// @Router       /candidate/interviews/{id}/notes [patch]
// @Security     BearerAuth
func (h *CandidateHandler) UpdateNotes(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	iv, err := h.ws.Interviews.AddNotes(c.Request.Context(), c.Param("id"), req.CandidateNotes)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notes saved", usecase.InterviewView{Interview: *iv, Display: usecase.ProjectInterview(iv.Status)})
}

// Dashboard godoc
// @Summary      Candidate dashboard
// @Description  Loads saved jobs, applications and interviews concurrently. A failing collection is reported in errors and does not fail the others.
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  response.Response{data=usecase.DashboardSummary}
// @Failure      401  {object}  response.Response
// @Router       /candidate/dashboard [get]
// @Security     BearerAuth
func (h *CandidateHandler) Dashboard(c *gin.Context) {
	errs := h.ws.Dashboard.Load(c.Request.Context())
	for _, err := range errs {
		if loadFailed(c, err) {
			return
		}
	}

	sess, ok := h.session.Current()
	if !ok {
		c.Error(apperror.NoSession())
		return
	}
	response.Success(c, http.StatusOK, "Dashboard", h.ws.Dashboard.Summary(sess.Profile, errs))
}
