package v1

import (
	"net/http"

	"go-intake-backend/internal/delivery/http/middleware"
	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type IdentityHandler struct {
	identityUC  domain.IdentityUsecase
	candidateUC domain.CandidateUsecase
}

func NewIdentityHandler(r *gin.RouterGroup, identityUC domain.IdentityUsecase, candidateUC domain.CandidateUsecase) {
	handler := &IdentityHandler{identityUC: identityUC, candidateUC: candidateUC}
	r.GET("/me", handler.Me)
}

// MeResponse is the session identity with its candidate progress, if any
type MeResponse struct {
	Identity       *domain.Identity       `json:"identity"`
	CandidateStage *domain.CandidateStage `json:"candidate_stage"`
	MissingSteps   []domain.CandidateStep `json:"missing_steps,omitempty"`
}

// Me godoc
// @Summary      Current identity
// @Tags         identity
// @Produce      json
// @Success      200  {object}  response.Response{data=MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /me [get]
// @Security     CookieAuth
func (h *IdentityHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	id := middleware.CurrentIdentity(c).ID

	identity, err := h.identityUC.GetCurrentIdentity(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}

	out := MeResponse{Identity: identity}
	detail, err := h.candidateUC.GetCandidate(ctx, id)
	switch {
	case err == nil:
		out.CandidateStage = &detail.Stage
		out.MissingSteps = detail.MissingSteps
	case !apperror.IsKind(err, apperror.KindNotFound):
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Current identity", out)
}
