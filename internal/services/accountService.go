package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

// tradingAPI is the slice of the CryptoBot client the account surface needs.
type tradingAPI interface {
	Profit(ctx context.Context, email string) ([]models.ProfitSample, error)
	Funds(ctx context.Context, email string) (*models.Funds, error)
	State(ctx context.Context, email string) (bool, error)
	SetState(ctx context.Context, email string, active bool) error
}

type AccountService interface {
	Funds(ctx context.Context, email string) (*models.Funds, error)
	ProfitHistory(ctx context.Context, email string) ([]models.ProfitSample, error)
	TradingState(ctx context.Context, email string) (bool, error)
	SetTradingState(ctx context.Context, email string, active bool) error
}

type accountService struct {
	trading tradingAPI
}

func NewAccountService(trading tradingAPI) AccountService {
	return &accountService{trading: trading}
}

func (s *accountService) Funds(ctx context.Context, email string) (*models.Funds, error) {
	return s.trading.Funds(ctx, email)
}

// ProfitHistory returns the cumulative profit series in date order, regardless
// of how the upstream delivered it.
func (s *accountService) ProfitHistory(ctx context.Context, email string) ([]models.ProfitSample, error) {
	samples, err := s.trading.Profit(ctx, email)
	if err != nil {
		return nil, err
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Date.Before(samples[j].Date)
	})
	return samples, nil
}

func (s *accountService) TradingState(ctx context.Context, email string) (bool, error) {
	return s.trading.State(ctx, email)
}

func (s *accountService) SetTradingState(ctx context.Context, email string, active bool) error {
	if err := s.trading.SetState(ctx, email, active); err != nil {
		return err
	}
	log.Info().Str("email", email).Bool("active", active).Msg("Trading state changed")
	return nil
}
