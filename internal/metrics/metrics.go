// Package metrics defines the Prometheus metrics for the OAuth
// onboarding flow. Standalone package to avoid import cycles between
// the services and the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LinksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "onboarding_links_created_total",
		Help: "Onboarding links issued by admins",
	})

	ExchangeResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_exchange_total",
		Help: "Code-for-token exchange attempts by platform and outcome",
	}, []string{"platform", "outcome"})

	CallbackDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oauth_callback_duration_seconds",
		Help:    "End-to-end OAuth callback handling time",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"platform", "outcome"})

	AuthorizationsUpserted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authorizations_upserted_total",
		Help: "Authorization rows written by platform",
	}, []string{"platform"})
)

// Exchange outcome label values.
const (
	OutcomeSuccess       = "success"
	OutcomeProviderError = "provider_error"
	OutcomeTransport     = "transport_error"
)

// Register registers all metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		LinksCreated, ExchangeResults, CallbackDuration, AuthorizationsUpserted,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
