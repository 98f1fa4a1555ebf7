package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/config"
	"github.com/promptdir/backend/internal/middleware"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type ExecuteHandler struct {
	service *services.ExecuteService
}

func NewExecuteHandler(db *gorm.DB, cfg *config.AIConfig) *ExecuteHandler {
	return &ExecuteHandler{
		service: services.NewExecuteService(db, cfg),
	}
}

// Execute runs an approved prompt against the configured AI providers.
// Anonymous callers are allowed; signed-in runs are attributed.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req services.ExecuteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	req.PromptID = c.Param("id")

	result, err := h.service.Execute(c.Request.Context(), &req, middleware.GetSubject(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
