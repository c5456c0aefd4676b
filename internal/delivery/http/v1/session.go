package v1

import (
	"errors"
	"net/http"
	"strings"

	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionWriter issues and clears the auth_token cookie
type sessionWriter struct {
	tokens *auth.TokenManager
	secure bool
}

func (s sessionWriter) establish(c *gin.Context, identity *domain.Identity) error {
	id, err := uuid.Parse(identity.ID)
	if err != nil {
		return apperror.Internal(err)
	}
	token, err := s.tokens.Issue(id, identity.Email)
	if err != nil {
		return apperror.Internal(err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(s.tokens.TTL().Seconds()), "/", "", s.secure, true)
	return nil
}

func (s sessionWriter) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", s.secure, true)
}

// safeNext only follows local paths
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return homePath
	}
	return next
}

// redisplay answers a failed form submission with the form, its values and
// field errors. Errors other than validation and auth go to ErrorHandler.
func redisplay(c *gin.Context, form response.FormPage, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		c.Error(err)
		return
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		form.Errors = appErr.Fields
		if len(form.Errors) == 0 {
			form.Errors = map[string]string{"form": appErr.Message}
		}
		response.Form(c, http.StatusUnprocessableEntity, appErr.Message, form)
	case apperror.KindAuth:
		form.Errors = map[string]string{"form": appErr.Message}
		response.Form(c, http.StatusUnauthorized, appErr.Message, form)
	default:
		c.Error(err)
	}
}
