package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultApplied  = "applied"
	ResultNoActive = "no_active"
	ResultReadOnly = "read_only"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Metrics holds the application's collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	operatorActions   *prometheus.CounterVec
	cascadeShifted    prometheus.Histogram
	refreshes         *prometheus.CounterVec
	activeTransitions prometheus.Counter
	requestDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	operatorActions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_operator_actions_total",
		Help: "Extend and finish actions by outcome",
	}, []string{"action", "result"})

	cascadeShifted := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "agenda_cascade_shifted_events",
		Help:    "Number of following events pushed by one extend",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})

	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_refresh_total",
		Help: "Calendar source refreshes by outcome",
	}, []string{"result"})

	activeTransitions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agenda_active_event_transitions_total",
		Help: "Number of times the active event changed",
	})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agenda_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registry.MustRegister(operatorActions, cascadeShifted, refreshes, activeTransitions, requestDuration)

	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		operatorActions:   operatorActions,
		cascadeShifted:    cascadeShifted,
		refreshes:         refreshes,
		activeTransitions: activeTransitions,
		requestDuration:   requestDuration,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) OperatorAction(action, result string) {
	if m == nil {
		return
	}
	m.operatorActions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) CascadeShifted(count int) {
	if m == nil {
		return
	}
	m.cascadeShifted.Observe(float64(count))
}

func (m *Metrics) Refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) ActiveTransition() {
	if m == nil {
		return
	}
	m.activeTransitions.Inc()
}

// Middleware records request durations labelled with the matched mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(recorder.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
