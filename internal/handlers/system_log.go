package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/response"
)

type SystemLogHandler struct{}

func NewSystemLogHandler() *SystemLogHandler {
	return &SystemLogHandler{}
}

// List serves the paginated system log view.
func (h *SystemLogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	result, err := services.ListSystemLogs(services.SystemLogListParams{
		Page:     page,
		PageSize: pageSize,
		Level:    c.Query("level"),
		Module:   c.Query("module"),
		Subject:  c.Query("subject"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Cleanup removes log rows past the retention window.
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	removed, err := services.CleanupOldLogs()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}
