package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type BootHandler struct {
	service *services.BootService
}

func NewBootHandler(db *gorm.DB) *BootHandler {
	return &BootHandler{
		service: services.NewBootService(db),
	}
}

// Load serves the startup aggregate the frontend fetches on first paint.
func (h *BootHandler) Load(c *gin.Context) {
	data, err := h.service.Load()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}
