package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/auth"
	"go-intake-backend/pkg/logger"
	"go-intake-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// LoginPath is where page routes send anonymous visitors
const LoginPath = "/login"

// IdentityLoader fetches fresh identity data for a session subject
type IdentityLoader interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
}

// Session resolves the auth_token cookie (or a bearer token) into an identity.
// Requests without a valid session continue anonymously; the Require*
// middlewares decide what anonymous callers get.
func Session(tokens *auth.TokenManager, identities IdentityLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie(auth.CookieName); err == nil {
			tokenString = cookie
		}
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			logger.Log.Debug("session token rejected", "error", err)
			c.Next()
			return
		}

		// Fresh data from the DB; capabilities are never trusted from the token
		identity, err := identities.GetByID(c.Request.Context(), claims.Subject)
		if err != nil || !identity.IsActive {
			c.Next()
			return
		}

		c.Set(string(domain.KeyUserID), identity.ID)
		c.Set(string(domain.KeyUserEmail), identity.Email)
		c.Set(string(domain.KeyIdentity), identity)
		c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), identity))

		c.Next()
	}
}

// CurrentIdentity returns the session identity, or nil for anonymous requests
func CurrentIdentity(c *gin.Context) *domain.Identity {
	v, ok := c.Get(string(domain.KeyIdentity))
	if !ok {
		return nil
	}
	identity, _ := v.(*domain.Identity)
	return identity
}

// RequireAPIAuth answers anonymous requests with 401 JSON
func RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePageAuth redirects anonymous visitors to the login page
func RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCapability must run after one of the Require*Auth middlewares.
// Missing capabilities are an explicit 403, never a redirect.
func RequireCapability(capability domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if !identity.HasCapability(capability) {
			if identity != nil {
				security.DefaultLogger().LogPermissionDenied(c.Request.Context(), identity.ID, string(capability))
			}
			response.Error(c, http.StatusForbidden, "You do not have permission to perform this action", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PasswordResetGate refuses identities that still hold an issued temporary
// password everywhere except the allowed paths.
func PasswordResetGate(allowed ...string) gin.HandlerFunc {
	allow := make(map[string]bool, len(allowed))
	for _, p := range allowed {
		allow[p] = true
	}
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil || !identity.MustResetPassword || allow[c.FullPath()] {
			c.Next()
			return
		}
		response.Error(c, http.StatusForbidden, "You must change your temporary password before continuing", nil)
		c.Abort()
	}
}
