package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/middleware"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB, gate *authz.Gate) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db, gate),
	}
}

// List returns the caller's projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.projectService.List(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Create creates a project authored by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.ProjectInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project)
}

// GetByID returns a project
// GET /api/projects/:project_id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "project_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Update replaces a project's writable fields
// PUT /api/projects/:project_id
func (h *ProjectHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// PartialUpdate changes the fields sent
// PATCH /api/projects/:project_id
func (h *ProjectHandler) PartialUpdate(c *gin.Context) {
	h.update(c, true)
}

func (h *ProjectHandler) update(c *gin.Context, partial bool) {
	id, err := pathID(c, "project_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.ProjectInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req, partial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Delete removes a project and everything under it
// DELETE /api/projects/:project_id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "project_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
