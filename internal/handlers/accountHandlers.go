package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/middlewares"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/services"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/utils"
)

// AccountHandler exposes the trading-account surface: portfolio value, profit
// history and the automated-trading toggle, all proxied to the CryptoBot API.
type AccountHandler struct {
	accountService services.AccountService
}

func NewAccountHandler(accountService services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func emailFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := r.Context().Value(middlewares.UserEmailKey).(string)
	if !ok || email == "" {
		utils.SendJSONError(w, "User email not found in context", http.StatusInternalServerError)
		return "", false
	}
	return email, true
}

func (h *AccountHandler) GetFunds(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(w, r)
	if !ok {
		return
	}

	funds, err := h.accountService.Funds(r.Context(), email)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to fetch funds")
		utils.SendJSONError(w, "Could not fetch portfolio value", http.StatusBadGateway)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, funds)
}

func (h *AccountHandler) GetProfitHistory(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(w, r)
	if !ok {
		return
	}

	samples, err := h.accountService.ProfitHistory(r.Context(), email)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to fetch profit history")
		utils.SendJSONError(w, "Could not fetch profit history", http.StatusBadGateway)
		return
	}

	type point struct {
		Date   string `json:"date"`
		Profit string `json:"profit"`
	}
	history := make([]point, 0, len(samples))
	for _, s := range samples {
		history = append(history, point{Date: s.Date.Format("2006-01-02"), Profit: s.Cumulative.String()})
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"profit": history})
}

func (h *AccountHandler) GetTradingState(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(w, r)
	if !ok {
		return
	}

	active, err := h.accountService.TradingState(r.Context(), email)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to fetch trading state")
		utils.SendJSONError(w, "Could not fetch trading state", http.StatusBadGateway)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (h *AccountHandler) SetTradingState(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(w, r)
	if !ok {
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.accountService.SetTradingState(r.Context(), email, req.Active); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to set trading state")
		utils.SendJSONError(w, "Could not update trading state", http.StatusBadGateway)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}
