package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/internal/application"
	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	"github.com/oksasatya/devfolio-api/pkg/response"
)

const (
	MsgProjectUpdated = "Project updated successfully"
	MsgProjectDeleted = "Project deleted successfully"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

// projectRequest keeps every field a pointer so an omitted field can be told
// apart from an empty one. Required fields are checked by the service.
type projectRequest struct {
	Name        *string `json:"name"`
	Tech        *string `json:"tech"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	URL         *string `json:"url"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

func (r projectRequest) input() application.ProjectInput {
	return application.ProjectInput{
		Name:        r.Name,
		Tech:        r.Tech,
		Description: r.Description,
		Status:      r.Status,
		URL:         r.URL,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

func (h *ProjectHandler) bind(c *gin.Context) (application.ProjectInput, bool) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, application.MsgNameTechRequired)
		return application.ProjectInput{}, false
	}
	return req.input(), true
}

// Create POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context, u *entity.User) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), u.ID, in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, p)
}

// List GET /api/projects
func (h *ProjectHandler) List(c *gin.Context, u *entity.User) {
	list, err := h.Svc.List(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, list)
}

// Get GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context, u *entity.User) {
	p, err := h.Svc.Get(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}

// Update PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context, u *entity.User) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	if _, err := h.Svc.Update(c.Request.Context(), u.ID, c.Param("id"), in); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, MsgProjectUpdated)
}

// Delete DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context, u *entity.User) {
	if err := h.Svc.Delete(c.Request.Context(), u.ID, c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, MsgProjectDeleted)
}

// Search GET /api/projects/search?q=&size=
func (h *ProjectHandler) Search(c *gin.Context, u *entity.User) {
	size, _ := strconv.Atoi(c.Query("size"))
	list, err := h.Svc.Search(c.Request.Context(), u.ID, c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, list)
}
