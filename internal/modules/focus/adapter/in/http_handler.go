package in

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	focusdto "studytrack/internal/modules/focus/dto"
	focusin "studytrack/internal/modules/focus/port/in"
	"studytrack/internal/platform/httpx"
)

// HTTPHandler exposes the focus timer of a long-running process. The
// process owns Restore and the poll loop, so handlers act on live state.
type HTTPHandler struct {
	usecase focusin.Usecase
}

func NewHTTPHandler(usecase focusin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/focus", h.state)
	r.POST("/focus/start", h.start)
	r.POST("/focus/pause", h.transition(h.usecase.Pause))
	r.POST("/focus/resume", h.transition(h.usecase.Resume))
	r.POST("/focus/stop", h.transition(h.usecase.Stop))
	r.GET("/focus/sessions", h.sessions)
}

type startRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

func (h HTTPHandler) state(c *gin.Context) {
	c.JSON(http.StatusOK, h.usecase.State(c.Request.Context()))
}

func (h HTTPHandler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id is required"})
		return
	}
	out, err := h.usecase.Start(c.Request.Context(), focusdto.StartInput{SubjectID: req.SubjectID})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) transition(fn func(context.Context) (focusdto.StateOutput, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fn(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h HTTPHandler) sessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.usecase.RecentSessions(c.Request.Context()))
}
