package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/middleware"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type IssueHandler struct {
	issueService *services.IssueService
}

func NewIssueHandler(db *gorm.DB, gate *authz.Gate) *IssueHandler {
	return &IssueHandler{
		issueService: services.NewIssueService(db, gate),
	}
}

// List returns a project's issues
// GET /api/projects/:project_id/issues
func (h *IssueHandler) List(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.issueService.List(c.Request.Context(), middleware.GetUserID(c), projectID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Create files an issue
// POST /api/projects/:project_id/issues
func (h *IssueHandler) Create(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.IssueInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	issue, err := h.issueService.Create(c.Request.Context(), middleware.GetUserID(c), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, issue)
}

// GET /api/projects/:project_id/issues/:issue_id
func (h *IssueHandler) GetByID(c *gin.Context) {
	ids, err := pathIDs(c, "project_id", "issue_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	issue, err := h.issueService.Get(c.Request.Context(), middleware.GetUserID(c), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, issue)
}

// PUT /api/projects/:project_id/issues/:issue_id
func (h *IssueHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// PATCH /api/projects/:project_id/issues/:issue_id
func (h *IssueHandler) PartialUpdate(c *gin.Context) {
	h.update(c, true)
}

func (h *IssueHandler) update(c *gin.Context, partial bool) {
	ids, err := pathIDs(c, "project_id", "issue_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.IssueInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	issue, err := h.issueService.Update(c.Request.Context(), middleware.GetUserID(c), ids[0], ids[1], &req, partial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, issue)
}

// Delete removes an issue and its comments
// DELETE /api/projects/:project_id/issues/:issue_id
func (h *IssueHandler) Delete(c *gin.Context) {
	ids, err := pathIDs(c, "project_id", "issue_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.issueService.Delete(c.Request.Context(), middleware.GetUserID(c), ids[0], ids[1]); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
