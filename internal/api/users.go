package api

import (
	"net/http"

	"pharmahub-service/internal/service"
	"pharmahub-service/internal/util"

	"github.com/gin-gonic/gin"
)

type issueTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// issueToken signs an access token for the email. It trusts the caller;
// the identity provider in front of this route is what authenticates them.
func (h *Handler) issueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, expiresAt, err := h.svc.Tokens.Issue(req.Email)
	if err != nil {
		respondError(c, "Failed to issue token", err)
		return
	}
	util.TokensIssuedTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt.Unix(),
	})
}

func (h *Handler) registerUser(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to register user", err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.Users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) myRole(c *gin.Context) {
	role, err := h.svc.Roles.ResolveRole(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, "Failed to resolve role", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.Users.UpdateProfile(c.Request.Context(), callerEmail(c), &req); err != nil {
		respondError(c, "Failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) updateUserRole(c *gin.Context) {
	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.Users.UpdateRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		respondError(c, "Failed to update role", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "role": req.Role})
}
