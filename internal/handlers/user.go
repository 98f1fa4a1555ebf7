package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/middleware"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		service: services.NewUserService(db),
	}
}

// Me returns the caller's profile, creating a minimal record when the
// identity webhook has not delivered one yet.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.EnsureUser(middleware.GetSubject(c), middleware.GetName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

type subscribeRequest struct {
	Subscribed bool `json:"subscribed"`
}

// Subscribe flips the caller's newsletter subscription.
func (h *UserHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.SetSubscribed(middleware.GetSubject(c), req.Subscribed)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// AdminList serves the paginated admin user view.
func (h *UserHandler) AdminList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.service.List(services.UserListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Role:     c.Query("role"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole changes a user's role.
func (h *UserHandler) SetRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.SetRole(c.Param("subjectId"), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// AdminGet returns one user by subject id.
func (h *UserHandler) AdminGet(c *gin.Context) {
	user, err := h.service.GetBySubject(c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}
