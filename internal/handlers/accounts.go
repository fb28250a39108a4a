package handlers

import (
	"net/http"

	"auction-backend/internal/middleware"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type AccountsHandler struct {
	signup   SignupAPI
	profiles ProfileAPI
}

// NewAccountsHandler serves signup and profiles. signup may be nil when
// identity provisioning is not configured.
func NewAccountsHandler(signup SignupAPI, profiles ProfileAPI) *AccountsHandler {
	return &AccountsHandler{signup: signup, profiles: profiles}
}

// Signup godoc
// @Summary     Sign up
// @Description Creates a confirmed Supabase user and its profile.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       request body models.SignupRequest true "Credentials and profile"
// @Success     201 {object} models.SignupResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /signup [post]
func (h *AccountsHandler) Signup(c *gin.Context) {
	if h.signup == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "signup not available"})
		return
	}
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.signup.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetProfile godoc
// @Summary     Get my profile
// @Tags        accounts
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Profile
// @Failure     404 {object} models.ErrorResponse
// @Router      /profile [get]
func (h *AccountsHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary     Update my profile
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.UpdateProfileRequest true "Profile"
// @Success     200 {object} models.Profile
// @Failure     400 {object} models.ErrorResponse
// @Router      /profile [put]
func (h *AccountsHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
