// User HTTP handlers.
//
// This file exposes REST endpoints for accounts:
//   - POST /users     (register)
//   - POST /sessions  (verify credentials)
//
// Passwords are bcrypt-hashed by the service layer and never echoed in
// responses; credential failures do not reveal whether the email exists.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/services"
)

//
// DTOs
//

// RegisterUserRequest is the JSON payload for creating an account.
type RegisterUserRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=255" example:"Ada Lovelace"`
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"correct horse battery"`
}

// CreateSessionRequest is the JSON payload for verifying credentials.
type CreateSessionRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse battery"`
}

// SessionResponse is the JSON envelope for a verified identity.
type SessionResponse struct {
	User *domain.User `json:"user"`
}

//
// Handlers
//

// RegisterUser godoc
// @ID          registerUser
// @Summary     Register an account
// @Description Creates a user with a bcrypt-hashed password. The email must not
// @Description already be registered.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterUserRequest  true  "Registration payload"
//
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [post]
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "full_name, email and password (min 8 chars) required")
		return
	}

	u, err := h.userSvc.Register(c.Request.Context(), strings.TrimSpace(req.FullName), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, u)
}

// CreateSession godoc
// @ID          createSession
// @Summary     Verify credentials
// @Description Resolves (email, password) to the matching user. Unknown email and
// @Description wrong password are indistinguishable.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateSessionRequest  true  "Credentials payload"
//
// @Success     200  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions [post]
func (h *Handlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	u, found, err := h.userSvc.FindByCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
		return
	}
	ok(c, http.StatusOK, SessionResponse{User: u})
}
