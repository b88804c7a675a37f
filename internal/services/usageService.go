package services

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/utils"
)

type profitFetcher interface {
	Profit(ctx context.Context, email string) ([]models.ProfitSample, error)
}

type billingAPI interface {
	Subscription(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	CreateMeterEvent(ctx context.Context, customerID string, quantity int64, ts time.Time) (string, error)
}

type billedUserLister interface {
	FindBilled(ctx context.Context) ([]models.User, error)
}

// UsageReporter turns each billed user's newly realized trading profit into a
// metered usage event, once per day. Per-user failures are logged and skipped;
// no run state is persisted, so a skipped user is simply picked up against
// whatever baseline the next run sees.
type UsageReporter struct {
	users   billedUserLister
	trading profitFetcher
	billing billingAPI
	now     func() time.Time
}

func NewUsageReporter(users billedUserLister, trading profitFetcher, billing billingAPI) *UsageReporter {
	return &UsageReporter{
		users:   users,
		trading: trading,
		billing: billing,
		now:     time.Now,
	}
}

// Run executes one reporting pass over every user with a subscription.
func (r *UsageReporter) Run(ctx context.Context) {
	users, err := r.users.FindBilled(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Usage run aborted: could not list billed users")
		return
	}

	log.Info().Int("users", len(users)).Msg("Starting daily usage report")

	for _, user := range users {
		r.reportUser(ctx, user)
	}

	log.Info().Msg("Daily usage report finished")
}

func (r *UsageReporter) reportUser(ctx context.Context, user models.User) {
	samples, err := r.trading.Profit(ctx, user.Email)
	if err != nil {
		utils.UsageReportErrorsTotal.Inc()
		log.Error().Err(err).Str("email", user.Email).Msg("Skipping user: profit fetch failed")
		return
	}

	if len(samples) == 0 {
		utils.UsageUsersSkippedTotal.WithLabelValues("empty_series").Inc()
		log.Debug().Str("email", user.Email).Msg("Skipping user: no profit samples")
		return
	}

	quantity := dailyQuantity(samples)

	sub, err := r.billing.Subscription(ctx, user.SubscriptionID)
	if err != nil {
		utils.UsageReportErrorsTotal.Inc()
		log.Error().Err(err).Str("email", user.Email).Str("subscription_id", user.SubscriptionID).Msg("Skipping user: subscription lookup failed")
		return
	}

	if !sub.Billable() {
		utils.UsageUsersSkippedTotal.WithLabelValues("not_billable").Inc()
		log.Info().Str("email", user.Email).Str("status", sub.Status).Msg("Skipping user: subscription not billable")
		return
	}

	// A zero quantity is still reported; losses clamp to zero, they are
	// never billed as negative usage.
	eventID, err := r.billing.CreateMeterEvent(ctx, sub.CustomerID, quantity, r.now())
	if err != nil {
		utils.UsageReportErrorsTotal.Inc()
		log.Error().Err(err).Str("email", user.Email).Msg("Skipping user: meter event failed")
		return
	}

	utils.UsageEventsEmittedTotal.Inc()
	log.Info().Str("email", user.Email).Int64("quantity_cents", quantity).Str("event_id", eventID).Msg("Usage event emitted")
}

// dailyQuantity converts a cumulative profit series into today's billable
// increment in cents. The series is sorted by date first since the upstream
// order is unspecified. With a single sample the whole cumulative value is the
// increment. Negative deltas clamp to zero, and cents round half away from zero.
func dailyQuantity(samples []models.ProfitSample) int64 {
	sorted := make([]models.ProfitSample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	current := sorted[len(sorted)-1].Cumulative
	previous := decimal.Zero
	if len(sorted) >= 2 {
		previous = sorted[len(sorted)-2].Cumulative
	}

	delta := current.Sub(previous)
	if delta.IsNegative() {
		delta = decimal.Zero
	}

	return delta.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
