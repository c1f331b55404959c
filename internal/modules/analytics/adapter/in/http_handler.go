package in

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	analyticsdto "studytrack/internal/modules/analytics/dto"
	analyticsin "studytrack/internal/modules/analytics/port/in"
	"studytrack/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase analyticsin.Usecase
}

func NewHTTPHandler(usecase analyticsin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/stats", h.stats)
	r.POST("/journal/export", h.export)
}

func (h HTTPHandler) stats(c *gin.Context) {
	out, err := h.usecase.Summary(c.Request.Context(), analyticsdto.SummaryInput{Window: c.DefaultQuery("window", "week")})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) export(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a number"})
		return
	}
	out, err := h.usecase.ExportJournal(c.Request.Context(), analyticsdto.ExportInput{Days: days})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
