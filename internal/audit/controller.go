package audit

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"authportal/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// HistoryReader lists recorded events for one address
type HistoryReader interface {
	History(ctx context.Context, email string, limit int) ([]AuthEvent, error)
}

type Controller struct {
	history HistoryReader
}

func NewController(history HistoryReader) *Controller {
	return &Controller{history: history}
}

// ListEvents returns the newest events for ?email=, at most ?limit= of them
func (c *Controller) ListEvents(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.Query("email"))
	if email == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Email is required", nil, nil)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	events, err := c.history.History(ctx.Request.Context(), email, limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load auth events", nil, nil)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Auth events retrieved", out, nil)
}
