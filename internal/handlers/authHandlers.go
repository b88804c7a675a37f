package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/services"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/utils"
)

type AuthHandler struct {
	otpService  services.OTPService
	userService services.UserService
}

func NewAuthHandler(otpService services.OTPService, userService services.UserService) *AuthHandler {
	return &AuthHandler{otpService: otpService, userService: userService}
}

// SendSignupCode mails a verification code for a registration attempt. The
// registration payload itself stays client-side until the code verifies.
func (a *AuthHandler) SendSignupCode(w http.ResponseWriter, r *http.Request) {
	var req models.SendCode
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := a.otpService.IssueSignupCode(r.Context(), req.Email)
	switch {
	case errors.Is(err, models.ErrInvalidEmail):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrEmailTaken):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrDeliveryFailed):
		utils.SendJSONError(w, err.Error(), http.StatusServiceUnavailable)
	case err != nil:
		log.Error().Err(err).Msg("Error issuing signup code")
		utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
	default:
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "verification code sent"})
	}
}

// Register verifies the code and materializes the pending registration.
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := a.userService.Register(r.Context(), &reg)
	switch {
	case errors.Is(err, models.ErrInvalidCode):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrFundsBelowFloor), errors.Is(err, models.ErrInvalidEmail):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		log.Error().Err(err).Msg("Error registering user")
		utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
	default:
		utils.RespondWithJSON(w, http.StatusCreated, user)
	}
}

// ForgotPassword always reports success so account existence is never revealed.
func (a *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.SendCode
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := a.otpService.IssueResetCode(r.Context(), req.Email)
	switch {
	case errors.Is(err, models.ErrInvalidEmail):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrDeliveryFailed):
		utils.SendJSONError(w, err.Error(), http.StatusServiceUnavailable)
	case err != nil:
		log.Error().Err(err).Msg("Error issuing reset code")
		utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
	default:
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "if that account exists, a code was sent"})
	}
}

func (a *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPassword
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := a.userService.ResetPassword(r.Context(), &req)
	switch {
	case errors.Is(err, models.ErrInvalidCode):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrUserNotFound):
		utils.SendJSONError(w, models.ErrInvalidCode.Error(), http.StatusBadRequest)
	case err != nil:
		log.Error().Err(err).Msg("Error resetting password")
		utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
	default:
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	}
}
