package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/middleware"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type ContributorHandler struct {
	contributorService *services.ContributorService
}

func NewContributorHandler(db *gorm.DB, gate *authz.Gate) *ContributorHandler {
	return &ContributorHandler{
		contributorService: services.NewContributorService(db, gate),
	}
}

// List returns the members of a project
// GET /api/projects/:project_id/contributors
func (h *ContributorHandler) List(c *gin.Context) {
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

	resp, err := h.contributorService.List(c.Request.Context(), middleware.GetUserID(c), projectID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Create enrolls a user in the project
// POST /api/projects/:project_id/contributors
func (h *ContributorHandler) Create(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.ContributorInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	row, err := h.contributorService.Create(c.Request.Context(), middleware.GetUserID(c), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, row)
}

// GetByID returns one membership
// GET /api/projects/:project_id/contributors/:contributor_id
func (h *ContributorHandler) GetByID(c *gin.Context) {
	ids, err := pathIDs(c, "project_id", "contributor_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	row, err := h.contributorService.Get(c.Request.Context(), middleware.GetUserID(c), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, row)
}

// PUT /api/projects/:project_id/contributors/:contributor_id
func (h *ContributorHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// PATCH /api/projects/:project_id/contributors/:contributor_id
func (h *ContributorHandler) PartialUpdate(c *gin.Context) {
	h.update(c, true)
}

func (h *ContributorHandler) update(c *gin.Context, partial bool) {
	ids, err := pathIDs(c, "project_id", "contributor_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.ContributorInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	row, err := h.contributorService.Update(c.Request.Context(), middleware.GetUserID(c), ids[0], ids[1], &req, partial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, row)
}

// Delete removes a membership
// DELETE /api/projects/:project_id/contributors/:contributor_id
func (h *ContributorHandler) Delete(c *gin.Context) {
	ids, err := pathIDs(c, "project_id", "contributor_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.contributorService.Delete(c.Request.Context(), middleware.GetUserID(c), ids[0], ids[1]); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
