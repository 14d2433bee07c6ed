package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wallet"

var (
	// TxSubmitted counts transactions accepted by the network
	TxSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "submitted_total",
		Help:      "Signed transactions accepted by the remote ledger.",
	})

	// TxNonceRetries counts resubmissions after a nonce collision
	TxNonceRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "nonce_retries_total",
		Help:      "Resubmissions with an incremented nonce after a collision.",
	})

	// TxFailed counts fatal submission failures by reason
	TxFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "failed_total",
		Help:      "Fatal transaction submission failures.",
	}, []string{"reason"})

	// Logins counts login attempts by result
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "account",
		Name:      "login_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	// Registrations counts successful registrations
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "account",
		Name:      "registered_total",
		Help:      "Accounts registered.",
	})
)

// Failure reasons used with TxFailed
const (
	ReasonTransport   = "transport"
	ReasonInvalid     = "invalid"
	ReasonRLP         = "rlp"
	ReasonRaw         = "raw"
	ReasonGasPrice    = "gas_price"
	ReasonRetryBudget = "retry_budget"
	ReasonSession     = "session"
)
