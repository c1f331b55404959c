package in

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subjectdto "studytrack/internal/modules/subject/dto"
	subjectin "studytrack/internal/modules/subject/port/in"
	"studytrack/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase subjectin.Usecase
}

func NewHTTPHandler(usecase subjectin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/subjects", h.list)
	r.POST("/subjects", h.create)
	r.GET("/subjects/:id", h.get)
	r.PATCH("/subjects/:id", h.update)
	r.DELETE("/subjects/:id", h.delete)
}

type subjectRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Image *string `json:"image"`
}

func (h HTTPHandler) list(c *gin.Context) {
	subjects, err := h.usecase.List(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h HTTPHandler) create(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	input := subjectdto.CreateInput{Name: *req.Name}
	if req.Color != nil {
		input.Color = *req.Color
	}
	if req.Image != nil {
		input.Image = *req.Image
	}
	out, err := h.usecase.Create(c.Request.Context(), input)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h HTTPHandler) get(c *gin.Context) {
	out, err := h.usecase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) update(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	out, err := h.usecase.Update(c.Request.Context(), subjectdto.UpdateInput{
		ID:    c.Param("id"),
		Name:  req.Name,
		Color: req.Color,
		Image: req.Image,
	})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) delete(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
