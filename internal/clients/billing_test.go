package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

func TestBillingSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions/sub_123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"sub_123","customer":"cus_9","status":"active"}`))
	}))
	defer server.Close()

	client := NewBilling(server.URL, "sk_test")
	sub, err := client.Subscription(context.Background(), "sub_123")
	assert.NoError(t, err)
	assert.Equal(t, "cus_9", sub.CustomerID)
	assert.True(t, sub.Billable())
}

func TestBillingSubscriptionCanceledNotBillable(t *testing.T) {
	sub := models.Subscription{Status: "canceled"}
	assert.False(t, sub.Billable())
}

func TestBillingCreateMeterEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/billing/meter_events", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "cus_9", r.PostForm.Get("payload[stripe_customer_id]"))
		assert.Equal(t, "3000", r.PostForm.Get("payload[value]"))
		assert.NotEmpty(t, r.PostForm.Get("identifier"))
		w.Write([]byte(`{"identifier":"evt_1"}`))
	}))
	defer server.Close()

	client := NewBilling(server.URL, "sk_test")
	id, err := client.CreateMeterEvent(context.Background(), "cus_9", 3000, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "evt_1", id)
}

func TestBillingCreateMeterEventRejectsNegativeQuantity(t *testing.T) {
	client := NewBilling("http://localhost:0", "sk_test")
	_, err := client.CreateMeterEvent(context.Background(), "cus_9", -1, time.Now())
	assert.Error(t, err)
}
