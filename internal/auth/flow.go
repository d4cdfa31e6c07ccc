package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"authportal/internal/flows"
	"authportal/internal/shared/utils/response"
	"authportal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// flowAction runs one step on a restored machine
type flowAction func(ctx context.Context, m flows.Machine) (flows.Outcome, error)

// flowRunner binds a browser to its stored flows through a cookie and runs
// actions under the flow's busy lock
type flowRunner struct {
	store      *flows.Store
	cookieName string
	secure     bool
	ttl        time.Duration
	logger     *logger.Logger
}

func (fr *flowRunner) flowID(c *gin.Context) string {
	id, err := c.Cookie(fr.cookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

func (fr *flowRunner) ensureID(c *gin.Context) string {
	id := fr.flowID(c)
	if id == "" {
		id = flows.NewID()
	}
	fr.setCookie(c, id, int(fr.ttl.Seconds()))
	return id
}

func (fr *flowRunner) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     fr.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   fr.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (fr *flowRunner) clearCookie(c *gin.Context) {
	fr.setCookie(c, "", -1)
}

// run executes act on the caller's flow of the given kind and writes the response
func (fr *flowRunner) run(c *gin.Context, kind flows.Kind, act flowAction) {
	out, view, err := fr.exec(c, kind, act)
	if err != nil {
		fr.fail(c, err)
		return
	}
	fr.respond(c, out, view)
}

// exec does the work of run without writing the body
func (fr *flowRunner) exec(c *gin.Context, kind flows.Kind, act flowAction) (flows.Outcome, FlowView, error) {
	ctx := c.Request.Context()
	id := fr.ensureID(c)

	release, err := fr.store.Acquire(ctx, kind, id)
	if err != nil {
		return flows.Outcome{}, FlowView{}, err
	}
	defer release()

	m, err := fr.store.Open(ctx, kind, id)
	if err != nil {
		return flows.Outcome{}, FlowView{}, err
	}

	// a client that goes away mid-call disposes the machine, so the late result is dropped
	stop := context.AfterFunc(ctx, m.Dispose)
	defer stop()

	out, err := act(ctx, m)
	if err != nil {
		return out, FlowView{}, err
	}

	if finished(m, out) {
		err = fr.store.Delete(ctx, kind, id)
	} else {
		err = fr.store.Save(ctx, id, m)
	}
	if err != nil {
		// the step already happened upstream; a lost snapshot only restarts the flow
		fr.logger.ErrorWithContext(ctx, "Failed to persist flow", err, map[string]interface{}{
			"flow": string(kind),
		})
	}

	for _, ck := range out.Cookies {
		http.SetCookie(c.Writer, ck)
	}
	return out, fr.view(m, out), nil
}

// current returns the caller's flow without changing it
func (fr *flowRunner) current(c *gin.Context, kind flows.Kind) FlowView {
	m, err := fr.store.Open(c.Request.Context(), kind, fr.flowID(c))
	if err != nil {
		if !errors.Is(err, flows.ErrFlowNotFound) {
			fr.logger.ErrorWithContext(c.Request.Context(), "Failed to load flow", err, map[string]interface{}{
				"flow": string(kind),
			})
		}
		m, _ = flows.New(kind, fr.store.Deps())
	}
	return fr.view(m, flows.Outcome{State: m.State()})
}

func (fr *flowRunner) view(m flows.Machine, out flows.Outcome) FlowView {
	v := FlowView{
		Flow:     m.Kind(),
		State:    m.State(),
		Notice:   out.Notice,
		Redirect: out.Redirect,
	}
	if e, ok := m.(interface{ Email() string }); ok {
		v.Email = e.Email()
	}
	if r, ok := m.(interface{ ResendCount() int }); ok {
		v.ResendCount = r.ResendCount()
		v.MaxResends = fr.store.Deps().MaxResends
	}
	if msg, ok := m.(interface{ Message() string }); ok {
		v.Message = msg.Message()
	}
	return v
}

// finished reports whether the flow reached a terminal step and can be dropped
func finished(m flows.Machine, out flows.Outcome) bool {
	switch m.Kind() {
	case flows.KindSignIn:
		return out.Redirect != "" && out.Notice != nil && out.Notice.Level == flows.NoticeSuccess
	case flows.KindResetPassword:
		return m.State() == flows.ResetSuccess
	case flows.KindPasswordManagement:
		return m.State() == flows.PasswordResetSuccess
	default:
		return false
	}
}

func (fr *flowRunner) respond(c *gin.Context, out flows.Outcome, view FlowView) {
	switch {
	case len(out.FieldErrors) > 0:
		msg := "Validation failed"
		if out.Notice != nil {
			msg = out.Notice.Message
		}
		response.RespondJSON(c, "error", http.StatusBadRequest, msg, view, out.FieldErrors)
	case out.Notice != nil && out.Notice.Level == flows.NoticeError:
		response.RespondJSON(c, "error", http.StatusBadRequest, out.Notice.Message, view, nil)
	default:
		msg := "OK"
		if out.Notice != nil {
			msg = out.Notice.Message
		}
		response.RespondJSON(c, "success", http.StatusOK, msg, view, nil)
	}
}

func (fr *flowRunner) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, flows.ErrBusy):
		response.RespondJSON(c, "error", http.StatusConflict, "Request already in progress", nil, nil)
	case errors.Is(err, flows.ErrInvalidTransition):
		response.RespondJSON(c, "error", http.StatusConflict, "Action not available in the current step", nil, nil)
	case errors.Is(err, flows.ErrDisposed):
		response.RespondJSON(c, "error", http.StatusConflict, "Flow was cancelled", nil, nil)
	case errors.Is(err, flows.ErrFlowNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, "Flow not found", nil, nil)
	default:
		fr.logger.LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to process request", nil, nil)
	}
}
