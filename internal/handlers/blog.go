package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type BlogHandler struct {
	service *services.BlogService
}

func NewBlogHandler(db *gorm.DB) *BlogHandler {
	return &BlogHandler{
		service: services.NewBlogService(db),
	}
}

// List serves the public blog index: published posts only, most recently
// published first.
func (h *BlogHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	blogs, err := h.service.ListPublished(services.PublishedListParams{
		Search: c.Query("search"),
		Limit:  limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, blogs)
}

// GetBySlug resolves a published post by its slug.
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	blog, err := h.service.GetBySlug(c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, blog)
}

// AdminList returns every post, drafts included.
func (h *BlogHandler) AdminList(c *gin.Context) {
	blogs, err := h.service.ListAll()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, blogs)
}

// AdminGet returns a post by ID regardless of status.
func (h *BlogHandler) AdminGet(c *gin.Context) {
	blog, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, blog)
}

// Create adds a post. The slug derives from the title unless given.
func (h *BlogHandler) Create(c *gin.Context) {
	var req services.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	blog, err := h.service.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, blog)
}

// Update patches a post. The first transition into published stamps the
// publish time.
func (h *BlogHandler) Update(c *gin.Context) {
	var req services.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	blog, err := h.service.Update(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, blog)
}

// Delete removes a post.
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
