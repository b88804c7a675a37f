package models

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
)

type Subscription struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer"`
	Status     string `json:"status"`
}

// Billable reports whether usage may be metered against this subscription.
func (s Subscription) Billable() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
