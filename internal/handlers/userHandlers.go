package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/middlewares"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/services"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (u *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Login
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Error().Err(err).Msg("Invalid request body for Login")
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := u.userService.Login(r.Context(), &creds)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, models.ErrBadCredentials) {
			statusCode = http.StatusUnauthorized
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (u *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := r.Context().Value(middlewares.UserIDKey).(string)
	if !ok {
		log.Error().Msg("User ID not found in context for GetMyProfile")
		utils.SendJSONError(w, "User ID not found in context", http.StatusInternalServerError)
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		log.Error().Err(err).Str("user_id_str", userIDStr).Msg("Invalid user ID format in context")
		utils.SendJSONError(w, "Invalid user ID format", http.StatusInternalServerError)
		return
	}

	user, err := u.userService.Profile(r.Context(), userID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, models.ErrUserNotFound) {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}
