package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

// CryptoBot is the client for the external trading-automation service. Every
// call carries the client timeout so one slow account cannot stall a batch run.
type CryptoBot struct {
	baseURL    string
	httpClient *http.Client
}

func NewCryptoBot(baseURL string) *CryptoBot {
	return &CryptoBot{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type SignupRequest struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	ExchangeAPIKey    string  `json:"api_key"`
	ExchangeAPISecret string  `json:"api_secret"`
	InitialFunds      float64 `json:"funds"`
}

// Signup provisions a trading account after a verified registration.
func (c *CryptoBot) Signup(ctx context.Context, req SignupRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode signup request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/signup", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("cryptobot signup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("cryptobot signup: unexpected status %d", resp.StatusCode)
	}

	log.Info().Str("email", req.Email).Msg("CryptoBot account provisioned")
	return nil
}

// profitPayload is the raw wire shape of GET /profit. PROFIT arrives as a
// string-encoded decimal and the array order is not guaranteed.
type profitPayload struct {
	Profit []struct {
		Date   string `json:"DATE"`
		Profit string `json:"PROFIT"`
	} `json:"profit"`
}

// Profit fetches the cumulative realized-profit series for one account.
// Malformed entries fail the whole payload rather than producing garbage samples.
func (c *CryptoBot) Profit(ctx context.Context, email string) ([]models.ProfitSample, error) {
	endpoint := fmt.Sprintf("%s/profit?email=%s", c.baseURL, url.QueryEscape(email))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cryptobot profit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cryptobot profit: unexpected status %d", resp.StatusCode)
	}

	var payload profitPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cryptobot profit: malformed response: %w", err)
	}

	samples := make([]models.ProfitSample, 0, len(payload.Profit))
	for _, entry := range payload.Profit {
		date, err := time.Parse("2006-01-02", entry.Date)
		if err != nil {
			return nil, fmt.Errorf("cryptobot profit: malformed date %q: %w", entry.Date, err)
		}
		cumulative, err := decimal.NewFromString(entry.Profit)
		if err != nil {
			return nil, fmt.Errorf("cryptobot profit: malformed profit %q: %w", entry.Profit, err)
		}
		samples = append(samples, models.ProfitSample{Date: date, Cumulative: cumulative})
	}

	return samples, nil
}

// fundsPayload mirrors the upstream wire shape: decimal values as strings.
type fundsPayload struct {
	Invested string `json:"INVESTED"`
	Current  string `json:"CURRENT"`
}

// Funds fetches invested and current portfolio value for one account.
func (c *CryptoBot) Funds(ctx context.Context, email string) (*models.Funds, error) {
	endpoint := fmt.Sprintf("%s/funds?email=%s", c.baseURL, url.QueryEscape(email))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cryptobot funds request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cryptobot funds: unexpected status %d", resp.StatusCode)
	}

	var payload fundsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cryptobot funds: malformed response: %w", err)
	}

	invested, err := decimal.NewFromString(payload.Invested)
	if err != nil {
		return nil, fmt.Errorf("cryptobot funds: malformed invested %q: %w", payload.Invested, err)
	}
	current, err := decimal.NewFromString(payload.Current)
	if err != nil {
		return nil, fmt.Errorf("cryptobot funds: malformed current %q: %w", payload.Current, err)
	}

	return &models.Funds{Invested: invested, Current: current}, nil
}

// State reports whether automated trading is active for the account.
func (c *CryptoBot) State(ctx context.Context, email string) (bool, error) {
	endpoint := fmt.Sprintf("%s/state?email=%s", c.baseURL, url.QueryEscape(email))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("cryptobot state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("cryptobot state: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("cryptobot state: malformed response: %w", err)
	}

	return payload.State == "active", nil
}

// SetState toggles automated trading for the account.
func (c *CryptoBot) SetState(ctx context.Context, email string, active bool) error {
	state := "inactive"
	if active {
		state = "active"
	}
	body, err := json.Marshal(map[string]string{"email": email, "state": state})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/state", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("cryptobot set state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cryptobot set state: unexpected status %d", resp.StatusCode)
	}

	log.Info().Str("email", email).Str("state", state).Msg("CryptoBot trading state updated")
	return nil
}
