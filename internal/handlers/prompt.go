package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/middleware"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type PromptHandler struct {
	service *services.PromptService
	users   *services.UserService
}

func NewPromptHandler(db *gorm.DB) *PromptHandler {
	return &PromptHandler{
		service: services.NewPromptService(db),
		users:   services.NewUserService(db),
	}
}

// List serves the public directory: approved prompts only, filtered,
// sorted and capped per the query.
func (h *PromptHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	summaries, err := h.service.ListApproved(services.ApprovedListParams{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Limit:    limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, summaries)
}

// GetByID returns the full prompt, content included. Reads by signed-in
// users bump their view counter.
func (h *PromptHandler) GetByID(c *gin.Context) {
	prompt, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if subject := middleware.GetSubject(c); subject != "" {
		_ = h.users.IncrementPromptViewCount(subject)
	}

	response.Success(c, prompt)
}

// Create accepts a signed-in user's submission. It lands pending.
func (h *PromptHandler) Create(c *gin.Context) {
	var req services.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subject := middleware.GetSubject(c)
	name := middleware.GetName(c)
	if _, err := h.users.EnsureUser(subject, name); err != nil {
		response.Error(c, err)
		return
	}

	prompt, err := h.service.Create(&req, subject, name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, prompt)
}

// ListMine returns the caller's own submissions, any status.
func (h *PromptHandler) ListMine(c *gin.Context) {
	prompts, err := h.service.ListByAuthor(middleware.GetSubject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, prompts)
}

// incrementRequest carries the optional counter delta. An omitted delta
// means 1; an explicit non-positive delta is rejected by the service.
type incrementRequest struct {
	Delta *int64 `json:"delta"`
}

// IncrementUsage bumps the public usage counter.
func (h *PromptHandler) IncrementUsage(c *gin.Context) {
	var req incrementRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	delta := int64(1)
	if req.Delta != nil {
		delta = *req.Delta
	}

	count, err := h.service.IncrementUsageCount(c.Param("id"), delta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"usageCount": count})
}

// AdminList serves the paginated moderation view across all statuses.
func (h *PromptHandler) AdminList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.service.List(services.AdminListParams{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Update applies a partial field patch.
func (h *PromptHandler) Update(c *gin.Context) {
	var req services.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prompt, err := h.service.Update(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prompt)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a prompt between the moderation states.
func (h *PromptHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prompt, err := h.service.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prompt)
}

// Delete removes a prompt and its favorites.
func (h *PromptHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
