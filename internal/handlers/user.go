package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/middleware"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB, gate *authz.Gate) *UserHandler {
	return &UserHandler{userService: services.NewUserService(db, gate)}
}

// Register creates an account
// POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var req services.UserInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.userService.List(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Me returns the caller's account
// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// PATCH /api/users/:id
func (h *UserHandler) PartialUpdate(c *gin.Context) {
	h.update(c, true)
}

func (h *UserHandler) update(c *gin.Context, partial bool) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.UserInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req, partial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// Delete removes the caller's own account
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
