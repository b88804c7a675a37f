package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

// Billing talks to the payment processor: subscription lookups and metered
// usage events. Requests are form-encoded with bearer-key auth.
type Billing struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewBilling(baseURL, apiKey string) *Billing {
	return &Billing{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Subscription looks up the current status and owning customer of a subscription.
func (b *Billing) Subscription(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	endpoint := fmt.Sprintf("%s/v1/subscriptions/%s", b.baseURL, url.PathEscape(subscriptionID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("billing subscription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("billing subscription: unexpected status %d", resp.StatusCode)
	}

	var sub models.Subscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("billing subscription: malformed response: %w", err)
	}

	return &sub, nil
}

// CreateMeterEvent reports one usage increment for a customer. Quantity is in
// minor currency units and must be non-negative.
func (b *Billing) CreateMeterEvent(ctx context.Context, customerID string, quantity int64, ts time.Time) (string, error) {
	if quantity < 0 {
		return "", fmt.Errorf("billing meter event: negative quantity %d", quantity)
	}

	form := url.Values{}
	form.Set("event_name", "realized_profit_cents")
	form.Set("identifier", uuid.NewString())
	form.Set("timestamp", strconv.FormatInt(ts.Unix(), 10))
	form.Set("payload[stripe_customer_id]", customerID)
	form.Set("payload[value]", strconv.FormatInt(quantity, 10))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/billing/meter_events", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("billing meter event request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("billing meter event: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("billing meter event: malformed response: %w", err)
	}

	log.Debug().Str("customer_id", customerID).Int64("quantity", quantity).Str("event", payload.Identifier).Msg("Usage event created")
	return payload.Identifier, nil
}
