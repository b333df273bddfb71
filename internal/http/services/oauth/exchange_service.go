// Package oauth implements the start, callback and token-exchange
// operations of the onboarding flow.
package oauth

import (
	"context"
	"errors"

	"github.com/clientlinkhq/clientlink/internal/metrics"
	"github.com/clientlinkhq/clientlink/internal/oauth/providers"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
)

// ErrUnknownPlatform reports a platform with no registered provider.
var ErrUnknownPlatform = errors.New("unknown platform")

// ExchangeService performs the confidential code-for-token exchange.
// It backs both the relay endpoint and the server-side callback.
type ExchangeService interface {
	Exchange(ctx context.Context, platform, code, redirectURI string) (*providers.TokenResponse, error)
}

type exchangeService struct {
	registry *providers.Registry
}

func NewExchangeService(registry *providers.Registry) ExchangeService {
	return &exchangeService{registry: registry}
}

func (s *exchangeService) Exchange(ctx context.Context, platform, code, redirectURI string) (*providers.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("ExchangeService.Exchange"),
		logger.Platform(platform),
	)

	p, err := s.registry.Get(platform)
	if err != nil {
		return nil, ErrUnknownPlatform
	}

	tr, err := p.Exchange(ctx, code, redirectURI)
	if err != nil {
		var exErr *providers.ExchangeError
		if errors.As(err, &exErr) {
			metrics.ExchangeResults.WithLabelValues(platform, metrics.OutcomeProviderError).Inc()
			log.Warn("provider rejected exchange",
				logger.Status(exErr.StatusCode),
			)
		} else {
			metrics.ExchangeResults.WithLabelValues(platform, metrics.OutcomeTransport).Inc()
			log.Error("exchange transport failure", logger.Err(err))
		}
		return nil, err
	}

	metrics.ExchangeResults.WithLabelValues(platform, metrics.OutcomeSuccess).Inc()
	return tr, nil
}
