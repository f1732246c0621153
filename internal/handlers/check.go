// internal/handlers/check.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dropwatch/dropwatch/internal/scheduler"
	"github.com/dropwatch/dropwatch/internal/services"
	"github.com/dropwatch/dropwatch/internal/utils"
)

type CheckHandler struct {
	checker *services.CheckerService
	sched   *scheduler.Scheduler
}

func NewCheckHandler(checker *services.CheckerService, sched *scheduler.Scheduler) *CheckHandler {
	return &CheckHandler{checker: checker, sched: sched}
}

// POST /v1/check — check all prices now. Individual product failures are
// logged server-side; the operation itself succeeds with whatever subset
// updated.
func (h *CheckHandler) CheckNow(c *gin.Context) {
	updated, err := h.checker.CheckAll(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"updated":       updated,
		"updated_count": len(updated),
	})
}

// GET /v1/schedule
func (h *CheckHandler) GetSchedule(c *gin.Context) {
	if h.sched == nil {
		utils.SuccessResponse(c, gin.H{"enabled": false})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"enabled":  true,
		"schedule": h.sched.Status(),
	})
}
