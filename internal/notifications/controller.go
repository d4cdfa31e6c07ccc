package notifications

import (
	"errors"
	"net/http"

	"authportal/internal/audit"
	"authportal/internal/backend"
	"authportal/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Controller serves the hooks the auth service calls back into
type Controller struct {
	service  *Service
	recorder audit.Recorder
}

func NewController(service *Service, recorder audit.Recorder) *Controller {
	return &Controller{service: service, recorder: recorder}
}

func (c *Controller) SendEmail(ctx *gin.Context) {
	var req EmailHookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	notification, err := c.service.SendEmail(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrInvalidPurpose):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid email purpose", nil, nil)
		case errors.Is(err, ErrInvalidCallbackURL):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid callback URL", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusBadGateway, "Failed to send email", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusAccepted, "Email dispatched", DispatchResponse{
		ID:      notification.ID.String(),
		Purpose: string(notification.Purpose),
		Status:  string(notification.Status),
	}, nil)
}

func (c *Controller) RecordAuthEvent(ctx *gin.Context) {
	var req AuthEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.recorder.Record(ctx.Request.Context(), req.Type, req.Email); err != nil {
		switch {
		case errors.Is(err, audit.ErrInvalidEventType):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event type", nil, nil)
		case errors.Is(err, audit.ErrMissingEmail):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Email is required", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to record event", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Event recorded", nil, nil)
}
