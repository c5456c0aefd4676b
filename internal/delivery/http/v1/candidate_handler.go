package v1

import (
	"io"
	"net/http"

	"go-intake-backend/internal/delivery/http/middleware"
	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC   domain.CandidateUsecase
	certificateUC domain.CertificateUsecase
	maxUpload     int64
}

func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, certificateUC domain.CertificateUsecase, maxUpload int64, uploadLimit gin.HandlerFunc) {
	handler := &CandidateHandler{
		candidateUC:   candidateUC,
		certificateUC: certificateUC,
		maxUpload:     maxUpload,
	}

	me := r.Group("/candidates/me")
	{
		me.POST("", handler.Create)
		me.GET("", handler.Get)
		me.DELETE("", handler.Delete)
		me.PUT("/personal-information", handler.AttachPersonalInformation)
		me.PUT("/passport", handler.AttachPassport)
		me.PUT("/work", handler.AttachWork)
		me.PUT("/family", handler.AttachFamily)
		me.PUT("/boesl", handler.AttachBOESL)
		me.POST("/certificate", uploadLimit, handler.UploadCertificate)
	}
}

func sessionID(c *gin.Context) string {
	return middleware.CurrentIdentity(c).ID
}

// bindJSON reports malformed bodies as a 400 before the usecase validates content
func bindJSON(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.Error(apperror.BadRequest("Request body must be valid JSON"))
		return false
	}
	return true
}

// Create godoc
// @Summary      Start the candidate record
// @Description  Idempotent: returns the existing record with 200 when one exists
// @Tags         candidates
// @Produce      json
// @Success      201  {object}  response.Response{data=domain.CandidateDetail}
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      401  {object}  response.Response
// @Router       /candidates/me [post]
// @Security     CookieAuth
func (h *CandidateHandler) Create(c *gin.Context) {
	detail, created, err := h.candidateUC.CreateCandidateRecord(c.Request.Context(), sessionID(c))
	if err != nil {
		c.Error(err)
		return
	}
	if created {
		response.Success(c, http.StatusCreated, "Candidate record created", detail)
		return
	}
	response.Success(c, http.StatusOK, "Candidate record already exists", detail)
}

// Get godoc
// @Summary      Get the candidate record
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      404  {object}  response.Response
// @Router       /candidates/me [get]
// @Security     CookieAuth
func (h *CandidateHandler) Get(c *gin.Context) {
	detail, err := h.candidateUC.GetCandidate(c.Request.Context(), sessionID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate record", detail)
}

// Delete godoc
// @Summary      Delete the candidate record and every section it owns
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/me [delete]
// @Security     CookieAuth
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateUC.DeleteCandidate(c.Request.Context(), sessionID(c)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate record deleted", nil)
}

// AttachPersonalInformation godoc
// @Summary      Save personal information
// @Description  Replaces any previously saved personal information and its addresses
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body  domain.PersonalInformationInput  true  "Personal information"
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /candidates/me/personal-information [put]
// @Security     CookieAuth
func (h *CandidateHandler) AttachPersonalInformation(c *gin.Context) {
	var input domain.PersonalInformationInput
	if !bindJSON(c, &input) {
		return
	}
	detail, err := h.candidateUC.AttachPersonalInformation(c.Request.Context(), sessionID(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Personal information saved", detail)
}

// AttachPassport godoc
// @Summary      Save passport information
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body  domain.PassportInput  true  "Passport and previous passport"
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      422  {object}  response.Response
// @Router       /candidates/me/passport [put]
// @Security     CookieAuth
func (h *CandidateHandler) AttachPassport(c *gin.Context) {
	var input domain.PassportInput
	if !bindJSON(c, &input) {
		return
	}
	detail, err := h.candidateUC.AttachPassportInformation(c.Request.Context(), sessionID(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Passport information saved", detail)
}

// AttachWork godoc
// @Summary      Save work information
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body  domain.WorkInput  true  "Work information with previous experiences"
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      422  {object}  response.Response
// @Router       /candidates/me/work [put]
// @Security     CookieAuth
func (h *CandidateHandler) AttachWork(c *gin.Context) {
	var input domain.WorkInput
	if !bindJSON(c, &input) {
		return
	}
	detail, err := h.candidateUC.AttachWorkInformation(c.Request.Context(), sessionID(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Work information saved", detail)
}

// AttachFamily godoc
// @Summary      Save family details
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body  domain.FamilyInput  true  "Family details"
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      422  {object}  response.Response
// @Router       /candidates/me/family [put]
// @Security     CookieAuth
func (h *CandidateHandler) AttachFamily(c *gin.Context) {
	var input domain.FamilyInput
	if !bindJSON(c, &input) {
		return
	}
	detail, err := h.candidateUC.AttachFamilyDetails(c.Request.Context(), sessionID(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Family details saved", detail)
}

// AttachBOESL godoc
// @Summary      Save BOESL registration
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body  domain.BOESLInput  true  "BOESL information"
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      422  {object}  response.Response
// @Router       /candidates/me/boesl [put]
// @Security     CookieAuth
func (h *CandidateHandler) AttachBOESL(c *gin.Context) {
	var input domain.BOESLInput
	if !bindJSON(c, &input) {
		return
	}
	detail, err := h.candidateUC.AttachBOESLInformation(c.Request.Context(), sessionID(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "BOESL information saved", detail)
}

// UploadCertificate godoc
// @Summary      Upload an academic certificate
// @Description  Returns the reference to submit as upload_certificate
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "JPG, PNG or PDF"
// @Success      201  {object}  response.Response{data=domain.CertificateUpload}
// @Failure      422  {object}  response.Response
// @Router       /candidates/me/certificate [post]
// @Security     CookieAuth
func (h *CandidateHandler) UploadCertificate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.FieldError("file", "A certificate file is required"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	// one byte over the limit is enough for the usecase to reject it
	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	upload, err := h.certificateUC.Upload(c.Request.Context(), sessionID(c), fileHeader.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Certificate uploaded", upload)
}
