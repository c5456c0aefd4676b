package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-intake-backend/internal/delivery/http/middleware"
	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	identityUC  domain.IdentityUsecase
	candidateUC domain.CandidateUsecase
}

// NewAdminHandler registers staff routes. Staff and superuser checks live
// in the usecases; candidate review is gated here by capability as well.
func NewAdminHandler(admin *gin.RouterGroup, identityUC domain.IdentityUsecase, candidateUC domain.CandidateUsecase) {
	handler := &AdminHandler{identityUC: identityUC, candidateUC: candidateUC}

	identities := admin.Group("/identities")
	{
		identities.GET("", handler.ListIdentities)
		identities.POST("", handler.IssueIdentity)
		identities.DELETE("/:id", handler.DeleteIdentity)
		identities.POST("/:id/capabilities", handler.GrantCapability)
		identities.DELETE("/:id/capabilities/:capability", handler.RevokeCapability)
	}

	candidates := admin.Group("/candidates", middleware.RequireCapability(domain.CapabilityReviewCandidate))
	{
		candidates.GET("", handler.ListCandidates)
		candidates.GET("/export", handler.ExportCandidates)
		candidates.GET("/:id", handler.GetCandidate)
	}
}

type GrantCapabilityRequest struct {
	Capability domain.Capability `json:"capability"`
}

// ListIdentities godoc
// @Summary      List identities
// @Tags         admin
// @Produce      json
// @Param        page       query  int  false  "Page"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/identities [get]
// @Security     CookieAuth
func (h *AdminHandler) ListIdentities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.identityUC.ListIdentities(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Identities", result)
}

// IssueIdentity godoc
// @Summary      Issue a candidate identity
// @Description  Creates the account with a random temporary password that must be changed at first login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  domain.IssueIdentityRequest  true  "Candidate email and name"
// @Success      201  {object}  response.Response{data=domain.IssuedCredential}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /admin/identities [post]
// @Security     CookieAuth
func (h *AdminHandler) IssueIdentity(c *gin.Context) {
	var req domain.IssueIdentityRequest
	if !bindJSON(c, &req) {
		return
	}
	issued, err := h.identityUC.IssueCandidateIdentity(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Identity issued", issued)
}

// DeleteIdentity godoc
// @Summary      Delete an identity
// @Description  Removes the candidate record, its sections and the identity's posts
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Identity ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/identities/{id} [delete]
// @Security     CookieAuth
func (h *AdminHandler) DeleteIdentity(c *gin.Context) {
	if err := h.identityUC.DeleteIdentity(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Identity deleted", nil)
}

// GrantCapability godoc
// @Summary      Grant a capability
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Identity ID"
// @Param        body  body  GrantCapabilityRequest  true  "Capability"
// @Success      200  {object}  response.Response{data=domain.Identity}
// @Failure      422  {object}  response.Response
// @Router       /admin/identities/{id}/capabilities [post]
// @Security     CookieAuth
func (h *AdminHandler) GrantCapability(c *gin.Context) {
	var req GrantCapabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	identity, err := h.identityUC.GrantCapability(c.Request.Context(), c.Param("id"), req.Capability)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Capability granted", identity)
}

// RevokeCapability godoc
// @Summary      Revoke a capability
// @Tags         admin
// @Produce      json
// @Param        id          path  string  true  "Identity ID"
// @Param        capability  path  string  true  "Capability"
// @Success      200  {object}  response.Response{data=domain.Identity}
// @Router       /admin/identities/{id}/capabilities/{capability} [delete]
// @Security     CookieAuth
func (h *AdminHandler) RevokeCapability(c *gin.Context) {
	identity, err := h.identityUC.RevokeCapability(c.Request.Context(), c.Param("id"), domain.Capability(c.Param("capability")))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Capability revoked", identity)
}

// ListCandidates godoc
// @Summary      Candidate review listing
// @Tags         admin
// @Produce      json
// @Param        search     query  string  false  "Email, name, NID or passport number"
// @Param        district   query  string  false  "Present address district"
// @Param        stage      query  string  false  "REGISTERED, IN_PROGRESS or COMPLETE"
// @Param        page       query  int     false  "Page"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/candidates [get]
// @Security     CookieAuth
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	var filter domain.CandidateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}
	result, err := h.candidateUC.ListCandidates(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates", result)
}

// GetCandidate godoc
// @Summary      Candidate record by identity
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Identity ID"
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      404  {object}  response.Response
// @Router       /admin/candidates/{id} [get]
// @Security     CookieAuth
func (h *AdminHandler) GetCandidate(c *gin.Context) {
	detail, err := h.candidateUC.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate record", detail)
}

// ExportCandidates godoc
// @Summary      Export candidates as xlsx
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        search    query  string  false  "Search"
// @Param        district  query  string  false  "District"
// @Param        stage     query  string  false  "Stage"
// @Success      200  {file}  file
// @Router       /admin/candidates/export [get]
// @Security     CookieAuth
func (h *AdminHandler) ExportCandidates(c *gin.Context) {
	var filter domain.CandidateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}
	data, err := h.candidateUC.ExportCandidates(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("candidates_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
