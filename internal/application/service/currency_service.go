package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/application/pricing"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

// ReferenceCurrency is the currency whose exchange rate drives display amounts
const ReferenceCurrency = "USD"

var ErrCurrencyNotListed = errors.New("reference currency not listed by backend")

// CurrencyService keeps the shared exchange rate in line with the backend
type CurrencyService struct {
	repo   repository.CurrencyRepository
	rate   *pricing.RateCell
	logger *zap.Logger
}

// NewCurrencyService creates a new currency service
func NewCurrencyService(repo repository.CurrencyRepository, rate *pricing.RateCell, logger *zap.Logger) *CurrencyService {
	return &CurrencyService{repo: repo, rate: rate, logger: logger}
}

// Refresh loads the reference currency rate from the backend. A manual
// override stays in effect; the refreshed rate is kept for when it is cleared.
func (s *CurrencyService) Refresh(ctx context.Context) (pricing.RateState, error) {
	currencies, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		return s.rate.State(), apperror.Wrap(err, apperror.ErrServiceUnavailable.Code, "Currencies are unavailable")
	}

	for _, c := range currencies {
		if !strings.EqualFold(c.Code, ReferenceCurrency) {
			continue
		}
		changed, err := s.rate.Refresh(c.ExchangeRate)
		if err != nil {
			return s.rate.State(), apperror.Wrap(err, apperror.ErrUnprocessable.Code, "Backend sent an invalid exchange rate")
		}
		if changed {
			s.logger.Info("exchange rate refreshed", zap.Float64("rate", c.ExchangeRate))
		}
		return s.rate.State(), nil
	}
	return s.rate.State(), apperror.Wrap(ErrCurrencyNotListed, apperror.ErrUnprocessable.Code, ReferenceCurrency+" rate is not available")
}

// Run refreshes the rate immediately and then every interval until ctx is done
func (s *CurrencyService) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("exchange rate refresh failed", zap.Error(err))
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn("exchange rate refresh failed", zap.Error(err))
			}
		}
	}
}
