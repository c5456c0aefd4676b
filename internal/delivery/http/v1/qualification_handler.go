package v1

import (
	"net/http"

	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type QualificationHandler struct {
	qualificationUC domain.AcademicQualificationUsecase
}

func NewQualificationHandler(protected, admin *gin.RouterGroup, qualificationUC domain.AcademicQualificationUsecase) {
	handler := &QualificationHandler{qualificationUC: qualificationUC}

	protected.GET("/academic-qualifications", handler.List)
	admin.POST("/academic-qualifications", handler.Create)
}

// List godoc
// @Summary      Academic qualifications
// @Tags         reference
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.AcademicQualification}
// @Router       /academic-qualifications [get]
// @Security     CookieAuth
func (h *QualificationHandler) List(c *gin.Context) {
	items, err := h.qualificationUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Academic qualifications", items)
}

// Create godoc
// @Summary      Add an academic qualification
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  domain.AcademicQualificationInput  true  "Qualification"
// @Success      201  {object}  response.Response{data=domain.AcademicQualification}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /admin/academic-qualifications [post]
// @Security     CookieAuth
func (h *QualificationHandler) Create(c *gin.Context) {
	var input domain.AcademicQualificationInput
	if !bindJSON(c, &input) {
		return
	}
	q, err := h.qualificationUC.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Academic qualification created", q)
}
