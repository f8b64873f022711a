package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maskan",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maskan",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	ledgerTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maskan",
			Name:      "ledger_transactions_total",
			Help:      "Ledger transaction rows written by type.",
		},
		[]string{"type"},
	)

	notifyDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maskan",
			Name:      "notify_deliveries_total",
			Help:      "Notification delivery attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, ledgerTransactions, notifyDeliveries)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingTransition counts a booking entering the given status.
func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// IncLedgerTransaction counts a written transaction row by type.
func IncLedgerTransaction(txType string) {
	ledgerTransactions.WithLabelValues(txType).Inc()
}

// IncNotifyDelivery counts a delivery attempt result (sent, retry, dead).
func IncNotifyDelivery(result string) {
	notifyDeliveries.WithLabelValues(result).Inc()
}
