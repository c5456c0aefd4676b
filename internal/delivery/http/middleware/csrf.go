package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"go-intake-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

const (
	CSRFTokenCookieName = "csrf_token"
	CSRFTokenHeaderName = "X-CSRF-Token"
	// CSRFTokenFormField is accepted from form posts in place of the header
	CSRFTokenFormField = "csrf_token"
	CSRFTokenLength    = 32
	CSRFTokenExpiry    = 24 * time.Hour
)

func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFMiddleware implements the double-submit cookie pattern: mutating
// requests must echo the csrf_token cookie in X-CSRF-Token (or the form field).
//
// Bearer-authenticated requests are not cookie-borne and skip the check, as do
// the exempt paths, which still receive a cookie so the next form can use it.
func CSRFMiddleware(secureCookie bool, exemptPaths ...string) gin.HandlerFunc {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = true
	}

	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			newToken, err := generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CSRFTokenCookieName, newToken, int(CSRFTokenExpiry.Seconds()), "/", "", secureCookie, false)
			csrfCookie = newToken
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if exempt[c.Request.URL.Path] || strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.Next()
			return
		}

		token := c.GetHeader(CSRFTokenHeaderName)
		if token == "" {
			token = c.PostForm(CSRFTokenFormField)
		}
		if token == "" {
			response.Error(c, http.StatusForbidden, "Missing CSRF token", nil)
			c.Abort()
			return
		}
		if token != csrfCookie {
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
