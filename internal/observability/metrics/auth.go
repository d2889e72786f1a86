package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_token_verifications_total",
			Help: "Total number of token verifications by result",
		},
		[]string{"result"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	AuthenticationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_authentication_failures_total",
			Help: "Total number of rejected bearer tokens by reason",
		},
		[]string{"reason"},
	)

	AuthorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_authorization_decisions_total",
			Help: "Total number of authorization decisions by operation and outcome",
		},
		[]string{"operation", "decision"},
	)
)
