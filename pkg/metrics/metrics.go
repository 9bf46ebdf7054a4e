package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "folkbase_mutations_total", Help: "Total document mutations by collection, operation and outcome"},
		[]string{"collection", "op", "outcome"},
	)
	CheckIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "folkbase_checkins_total", Help: "Total QR check-in attempts by outcome"},
		[]string{"outcome"},
	)
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "folkbase_emails_sent_total", Help: "Total outbound emails by outcome"},
		[]string{"outcome"},
	)
	SignIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "folkbase_auth_signins_total", Help: "Total sign-in attempts by method and outcome"},
		[]string{"method", "outcome"},
	)
	LiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "folkbase_live_subscribers", Help: "Open live feed subscriptions"},
	)
	Members = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "folkbase_members", Help: "Roster size by member status"},
		[]string{"status"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Mutations, CheckIns, EmailsSent, SignIns, LiveSubscribers, Members)
	})
}

// Outcome labels a result for the counters above
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordMutation counts a write against a collection
func RecordMutation(collection, op string, err error) {
	Mutations.WithLabelValues(collection, op, Outcome(err)).Inc()
}
