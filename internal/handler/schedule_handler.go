package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sessionops/scheduler-api/internal/dto"
	"github.com/sessionops/scheduler-api/internal/service"
	appErrors "github.com/sessionops/scheduler-api/pkg/errors"
	"github.com/sessionops/scheduler-api/pkg/response"
)

type scheduleRunner interface {
	Run(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleRunResponse, error)
	GetRun(id string) (*dto.ScheduleRunResponse, error)
}

// ScheduleHandler exposes the scheduling endpoints.
type ScheduleHandler struct {
	service scheduleRunner
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Run godoc
// @Summary Build a weekly schedule from appointment requests
// @Description Runs the configured engine over the payload and returns filled and unfilled appointments plus a validation report. An unplaceable High priority request yields 422 with the partial result attached.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Scheduling payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Run(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheduling payload"))
		return
	}

	resp, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, appErrors.ErrUnschedulable) && resp != nil {
			c.Header("Cache-Control", "no-store")
			c.JSON(appErrors.ErrUnschedulable.Status, response.Envelope{
				Data:  resp,
				Error: appErrors.ErrUnschedulable,
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// GetRun godoc
// @Summary Replay a finished scheduling run
// @Tags Scheduler
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/runs/{id} [get]
func (h *ScheduleHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}
