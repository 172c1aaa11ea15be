package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"user_management/internal/models"
	"user_management/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"

	msgUserDeleted = "user deleted"

	errInvalidUserID = "invalid user id"
	errUserNotFound  = "user not found"
	errEmailTaken    = "email already in use"
	errCreateUser    = "failed to create user"
	errListUsers     = "failed to list users"
	errUpdateUser    = "failed to update user"
	errDeleteUser    = "failed to delete user"

	healthTimeout = 2 * time.Second
)

// UserRequest is the body of create and update.
type UserRequest struct {
	Name     string `json:"name" binding:"required,min=5,max=35" example:"Alice Doe"`
	Email    string `json:"email" binding:"required,email,max=254" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=12,max=72,pwbytes,complexpw" example:"correcthorse42"`
}

func (r UserRequest) toInput() models.UserInput {
	return models.UserInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

// DeleteUserResponse confirms a removal.
type DeleteUserResponse struct {
	Message string `json:"message" example:"user deleted"`
	ID      int64  `json:"id" example:"3"`
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// parseUserID reads the :id path parameter; writes 400 and returns false when invalid.
func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidUserID})
		return 0, false
	}
	return id, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	if h.services.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.services.Ping(ctx); err != nil {
			if h.log != nil {
				h.log.Errorw("health_db_ping_failed", "err", err)
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": statusUnavailable, "db": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "db": "up"})
}

// @Summary      Create user
// @Description  Registers a USER-role account. The password is stored hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input  body      UserRequest  true  "new user"
// @Success      201    {object}  models.User
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /user [post]
func (h *Handler) createUser(c *gin.Context) {
	var req UserRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	u, err := h.services.Users.Create(c.Request.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errCreateUser, "user_create_failed", err, "email", req.Email)
		return
	}

	c.JSON(http.StatusCreated, u)
}

// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /user [get]
// @Security     BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.services.Users.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListUsers, "user_list_failed", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Update user
// @Description  Replaces name, email and password. The password is re-hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id     path      int          true  "user id"
// @Param        input  body      UserRequest  true  "new values"
// @Success      200    {object}  models.User
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /user/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var req UserRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	u, err := h.services.Users.Update(c.Request.Context(), id, req.toInput())
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errUpdateUser, "user_update_failed", err, "id", id)
		return
	}

	c.JSON(http.StatusOK, u)
}

// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "user id"
// @Success      200  {object}  DeleteUserResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /user/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.services.Users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteUser, "user_delete_failed", err, "id", id)
		return
	}

	if h.log != nil {
		if identity, ok := identityFromContext(c); ok {
			h.log.Infow("user_deleted", "id", id, "by", identity.UserID)
		}
	}
	c.JSON(http.StatusOK, DeleteUserResponse{Message: msgUserDeleted, ID: id})
}
