package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{
		service: services.NewCategoryService(db),
	}
}

// List returns all categories in display order.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

// Get resolves one category by its stable identifier.
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.service.GetByCategoryID(c.Param("categoryId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

// Create adds a category.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.service.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, category)
}

// Update patches a category's display fields.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.service.Update(c.Param("categoryId"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, category)
}

// Delete removes a category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("categoryId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Recount triggers an immediate prompt-count recompute.
func (h *CategoryHandler) Recount(c *gin.Context) {
	if err := h.service.RecountPromptCounts(); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"recounted": true})
}
