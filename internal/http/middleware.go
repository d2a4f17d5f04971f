package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-platform/internal/auth"
	"blog-platform/internal/domain"
)

const principalKey = "principal"

// principalFromRequest decodes the bearer token, if any. A missing, tampered or
// expired token yields nil: the request proceeds as unauthenticated.
func (h *Handler) principalFromRequest(c *gin.Context) *auth.Principal {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	if header == "" {
		return nil
	}

	principal, err := h.tokens.Parse(header)
	if err != nil {
		return nil
	}
	return principal
}

// applyDecision converts a typed authorization decision into a response.
// Returns true when the request may proceed.
func applyDecision(c *gin.Context, decision auth.Decision) bool {
	if decision.Allowed {
		return true
	}
	switch decision.Reason {
	case auth.DenyForbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return false
}

func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := h.principalFromRequest(c)
		if !applyDecision(c, auth.Authenticated(principal)) {
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := currentPrincipal(c)
		if !applyDecision(c, auth.RequireRole(principal, domain.RoleAdmin)) {
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) *auth.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := value.(*auth.Principal)
	return principal
}
