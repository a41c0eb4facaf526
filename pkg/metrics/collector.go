// Package metrics exposes prometheus instrumentation for the bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/anikeev-v/pogodnik/internal/profile"
	"github.com/anikeev-v/pogodnik/internal/state"
)

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of handled updates labeled by intent and status",
		},
		[]string{"intent", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	weatherLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookups_total",
			Help: "Total number of weather provider calls by kind and status",
		},
		[]string{"kind", "status"},
	)
	broadcastDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Total number of broadcast deliveries by status",
		},
		[]string{"status"},
	)
	knownUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "known_users",
			Help: "Number of users with a stored profile",
		},
	)
	activeUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_users",
			Help: "Number of known users without a ban flag",
		},
	)
	sessionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_state",
			Help: "Number of live conversation sessions per state",
		},
		[]string{"state"},
	)
)

var trackedStates = []state.State{
	state.StateIdle,
	state.StateAwaitingLanguage,
	state.StateAwaitingCity,
}

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordUpdate increments the update counter and records duration.
func RecordUpdate(intent, status string, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	updatesTotal.WithLabelValues(intent, status).Inc()
	updateDurationSeconds.WithLabelValues(intent).Observe(duration.Seconds())
}

// RecordStateTransition tracks FSM transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordWeatherLookup tracks calls to the weather provider.
func RecordWeatherLookup(kind, status string) {
	weatherLookupsTotal.WithLabelValues(kind, status).Inc()
}

// RecordBroadcastDelivery tracks a single broadcast send outcome.
func RecordBroadcastDelivery(status string) {
	broadcastDeliveriesTotal.WithLabelValues(status).Inc()
}

// Collector periodically samples the profile store and session machine,
// emitting user and session gauges.
type Collector struct {
	store    *profile.Store
	fsm      state.Machine
	interval time.Duration
}

// NewCollector builds a metrics collector bound to the store and FSM.
func NewCollector(store *profile.Store, fsm state.Machine, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &Collector{
		store:    store,
		fsm:      fsm,
		interval: interval,
	}
}

// Run samples gauges on the configured interval until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) {
	if c == nil {
		return
	}

	for {
		c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *Collector) collect(ctx context.Context) {
	if c.store != nil {
		stats := c.store.Stats()
		knownUsers.Set(float64(stats.TotalUsers))
		activeUsers.Set(float64(stats.ActiveUsers))
	}

	if c.fsm == nil {
		return
	}

	sessions, err := c.fsm.AllSessions(ctx)
	if err != nil {
		return
	}

	counts := make(map[string]int, len(sessions))
	for _, session := range sessions {
		label := "unknown"
		if session != nil && session.CurrentState != "" {
			label = string(session.CurrentState)
		}
		counts[label]++
	}

	sessionsByState.Reset()

	for _, tracked := range trackedStates {
		label := string(tracked)
		sessionsByState.WithLabelValues(label).Set(float64(counts[label]))
		delete(counts, label)
	}

	for label, count := range counts {
		sessionsByState.WithLabelValues(label).Set(float64(count))
	}
}
