package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/middleware"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(db *gorm.DB, gate *authz.Gate) *CommentHandler {
	return &CommentHandler{
		commentService: services.NewCommentService(db, gate),
	}
}

// commentPath parses the project and issue ids plus, when withUUID is set,
// the comment identifier. A malformed identifier cannot match a row.
func commentPath(c *gin.Context, withUUID bool) (projectID, issueID uint, commentUUID string, err error) {
	ids, err := pathIDs(c, "project_id", "issue_id")
	if err != nil {
		return 0, 0, "", err
	}
	if withUUID {
		parsed, perr := uuid.Parse(c.Param("comment_uuid"))
		if perr != nil {
			return 0, 0, "", response.NewNotFound("not found")
		}
		commentUUID = parsed.String()
	}
	return ids[0], ids[1], commentUUID, nil
}

// GET /api/projects/:project_id/issues/:issue_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	projectID, issueID, _, err := commentPath(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.commentService.List(c.Request.Context(), middleware.GetUserID(c), projectID, issueID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// POST /api/projects/:project_id/issues/:issue_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	projectID, issueID, _, err := commentPath(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.CommentInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.GetUserID(c), projectID, issueID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// GET /api/projects/:project_id/issues/:issue_id/comments/:comment_uuid
func (h *CommentHandler) GetByUUID(c *gin.Context) {
	projectID, issueID, commentUUID, err := commentPath(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	comment, err := h.commentService.Get(c.Request.Context(), middleware.GetUserID(c), projectID, issueID, commentUUID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	h.update(c, false)
}

func (h *CommentHandler) PartialUpdate(c *gin.Context) {
	h.update(c, true)
}

func (h *CommentHandler) update(c *gin.Context, partial bool) {
	projectID, issueID, commentUUID, err := commentPath(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.CommentInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), middleware.GetUserID(c), projectID, issueID, commentUUID, &req, partial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comment)
}

// DELETE /api/projects/:project_id/issues/:issue_id/comments/:comment_uuid
func (h *CommentHandler) Delete(c *gin.Context) {
	projectID, issueID, commentUUID, err := commentPath(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), middleware.GetUserID(c), projectID, issueID, commentUUID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
