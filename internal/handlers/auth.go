package handlers

import (
	"errors"
	"net/http"

	"user_management/internal/service"

	"github.com/gin-gonic/gin"
)

// SignInRequest is the credentials payload of POST /auth/sign-in.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@123.com"`
	Password string `json:"password" binding:"required" example:"AG3ND4DM-123_"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "route", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return false
	}
	return true
}

// @Summary      Sign in
// @Description  Exchanges email and password for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      SignInRequest  true  "credentials"
// @Success      200    {object}  map[string]string  "token"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input SignInRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_sign_in_failed", "email", input.Email)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to sign in", "auth_sign_in_error", err, "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
