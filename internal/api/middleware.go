package api

import (
	"context"
	"net/http"
	"strings"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/auth"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	claimsKey = "auth.claims"
	roleKey   = "auth.role"
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RoleResolver maps an identity to its persisted role
type RoleResolver interface {
	ResolveRole(ctx context.Context, email string) (models.Role, error)
}

func deny(c *gin.Context, status int, reason string, err error) {
	util.AuthDenialsTotal.WithLabelValues(reason).Inc()
	util.GetLogger().Info("Access denied",
		zap.String("reason", reason),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))

	code := apperr.Code(apperr.ErrUnauthenticated)
	message := "Unauthorized access"
	if status == http.StatusForbidden {
		code = apperr.Code(apperr.ErrForbidden)
		message = "Forbidden access"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuthenticated rejects requests without a valid bearer token and
// attaches the verified claims to the context
func RequireAuthenticated(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			deny(c, http.StatusUnauthorized, "missing_token", apperr.ErrUnauthenticated)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			deny(c, http.StatusUnauthorized, "invalid_token", err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole admits only callers whose persisted role is role. It must run
// after RequireAuthenticated.
func RequireRole(resolver RoleResolver, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			deny(c, http.StatusForbidden, "no_claims", apperr.ErrForbidden)
			return
		}

		actual, err := resolver.ResolveRole(c.Request.Context(), claims.Email)
		if err != nil {
			deny(c, http.StatusForbidden, "role_lookup_failed", err)
			return
		}
		if actual != role {
			deny(c, http.StatusForbidden, "wrong_role", apperr.ErrForbidden)
			return
		}

		c.Set(roleKey, actual)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil && claims.Email != ""
}

// callerEmail returns the authenticated email. Handlers behind
// RequireAuthenticated always have one.
func callerEmail(c *gin.Context) string {
	claims, ok := claimsFrom(c)
	if !ok {
		return ""
	}
	return claims.Email
}
