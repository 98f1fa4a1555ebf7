package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/middleware"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type FavoriteHandler struct {
	service *services.FavoriteService
	users   *services.UserService
}

func NewFavoriteHandler(db *gorm.DB) *FavoriteHandler {
	return &FavoriteHandler{
		service: services.NewFavoriteService(db),
		users:   services.NewUserService(db),
	}
}

// List returns the caller's favorited prompts as directory summaries.
func (h *FavoriteHandler) List(c *gin.Context) {
	summaries, err := h.service.List(middleware.GetSubject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summaries)
}

// Add favorites a prompt for the caller. Repeat adds are no-ops.
func (h *FavoriteHandler) Add(c *gin.Context) {
	subject := middleware.GetSubject(c)
	if _, err := h.users.EnsureUser(subject, middleware.GetName(c)); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Add(subject, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"favorited": true})
}

// Remove unfavorites a prompt. Removing an absent favorite is a no-op.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(middleware.GetSubject(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"favorited": false})
}

// Check reports whether the caller has favorited the prompt.
func (h *FavoriteHandler) Check(c *gin.Context) {
	favorited, err := h.service.IsFavorited(middleware.GetSubject(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"favorited": favorited})
}
