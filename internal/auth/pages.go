package auth

import (
	"context"
	"net/http"

	"authportal/internal/flows"
	"authportal/internal/shared/middleware"
	"authportal/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Page serves a static page route. Session data is attached when OptionalSession found one.
func (c *Controller) Page(name string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.RespondJSON(ctx, "success", http.StatusOK, "OK", c.page(ctx, name), nil)
	}
}

// FlowPage serves a page backed by a flow; the body carries the current step
func (c *Controller) FlowPage(name string, kind flows.Kind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		page := c.page(ctx, name)
		view := c.flows.current(ctx, kind)
		page.Flow = &view
		response.RespondJSON(ctx, "success", http.StatusOK, "OK", page, nil)
	}
}

// ResetPasswordPage takes the token from the emailed link and starts the reset flow
func (c *Controller) ResetPasswordPage(ctx *gin.Context) {
	token := ctx.Query("token")
	_, view, err := c.flows.exec(ctx, flows.KindResetPassword, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.ResetPassword).Start(rc, token)
	})
	if err != nil {
		c.flows.fail(ctx, err)
		return
	}

	page := c.page(ctx, "reset-password")
	page.Flow = &view
	response.RespondJSON(ctx, "success", http.StatusOK, "OK", page, nil)
}

func (c *Controller) page(ctx *gin.Context, name string) PageResponse {
	page := PageResponse{Page: name}
	if session, ok := middleware.CurrentSession(ctx); ok {
		page.Authenticated = true
		user := session.User
		page.User = &user
	}
	return page
}
