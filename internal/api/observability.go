package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
	"github.com/hungerium/hungeriumm-sub001/internal/persist"
)

// Transport metrics. Labels are bounded: no per-player or per-session values.
var (
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // Route pattern, not full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})

	wsMessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_dropped_total",
		Help: "WebSocket messages dropped because a client fell behind",
	})
)

// Metrics turns session lifecycle and tick reports into Prometheus series.
// It implements session.Observer. Engine stats are cumulative per session,
// so the last report of each session is kept to derive counter deltas.
type Metrics struct {
	registry *prometheus.Registry

	tickDuration    prometheus.Histogram
	sessionsActive  prometheus.Gauge
	sessionsClosed  *prometheus.CounterVec
	spawns          *prometheus.CounterVec
	poolExhausted   *prometheus.CounterVec
	pickups         prometheus.Counter
	gameOvers       prometheus.Counter
	bossesRetired   prometheus.Counter
	restarts        prometheus.Counter
	commandsDropped prometheus.Counter

	last sync.Map // session id -> tickSample
}

type tickSample struct {
	stats game.Stats
	pools [6]game.PoolStats
}

// NewMetrics registers the simulation metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "game_tick_duration_seconds",
			Help:    "Time spent in one simulation tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.025},
		}),
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "game_sessions_active",
			Help: "Currently running sessions",
		}),
		sessionsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "game_sessions_closed_total",
			Help: "Sessions closed, by reason",
		}, []string{"reason"}),
		spawns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "game_spawns_total",
			Help: "Entities spawned, by schedule",
		}, []string{"kind"}),
		poolExhausted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "game_pool_exhausted_total",
			Help: "Acquires that found a pool full",
		}, []string{"pool"}),
		pickups: f.NewCounter(prometheus.CounterOpts{
			Name: "game_pickups_total",
			Help: "Collectibles picked up",
		}),
		gameOvers: f.NewCounter(prometheus.CounterOpts{
			Name: "game_over_total",
			Help: "Runs ended by a hazard",
		}),
		bossesRetired: f.NewCounter(prometheus.CounterOpts{
			Name: "game_bosses_retired_total",
			Help: "Bosses defeated or timed out",
		}),
		restarts: f.NewCounter(prometheus.CounterOpts{
			Name: "game_restarts_total",
			Help: "Runs restarted",
		}),
		commandsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "game_commands_dropped_total",
			Help: "Commands dropped because a session queue was full",
		}),
	}
}

// Registry exposes the private registry for the debug server and tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) SessionOpened(id string) {
	m.sessionsActive.Inc()
}

func (m *Metrics) SessionClosed(id, reason string) {
	m.sessionsActive.Dec()
	m.sessionsClosed.WithLabelValues(reason).Inc()
	m.last.Delete(id)
}

// Tick runs on a session's tick goroutine. Each session reports from one
// goroutine only, so the per-session sample needs no further locking.
func (m *Metrics) Tick(r game.TickReport) {
	m.tickDuration.Observe(r.Duration.Seconds())

	var prev tickSample
	if v, ok := m.last.Load(r.SessionID); ok {
		prev = v.(tickSample)
	}
	cur := tickSample{stats: r.Stats, pools: r.Pools}
	m.last.Store(r.SessionID, cur)

	for k := range cur.stats.Spawns {
		if d := delta(cur.stats.Spawns[k], prev.stats.Spawns[k]); d > 0 {
			m.spawns.WithLabelValues(game.SpawnKind(k).String()).Add(d)
		}
	}
	for i, p := range cur.pools {
		if d := delta(p.Exhausted, prev.pools[i].Exhausted); d > 0 {
			m.poolExhausted.WithLabelValues(p.Name).Add(d)
		}
	}
	addDelta(m.pickups, cur.stats.Pickups, prev.stats.Pickups)
	addDelta(m.gameOvers, cur.stats.GameOvers, prev.stats.GameOvers)
	addDelta(m.bossesRetired, cur.stats.BossesRetired, prev.stats.BossesRetired)
	addDelta(m.restarts, cur.stats.Restarts, prev.stats.Restarts)
	addDelta(m.commandsDropped, cur.stats.CommandsDropped, prev.stats.CommandsDropped)
}

func delta(cur, prev uint64) float64 {
	if cur <= prev {
		return 0
	}
	return float64(cur - prev)
}

func addDelta(c prometheus.Counter, cur, prev uint64) {
	if d := delta(cur, prev); d > 0 {
		c.Add(d)
	}
}

// WatchEventLog exports event log counters, read at scrape time.
func (m *Metrics) WatchEventLog(el *game.EventLog) {
	if el == nil {
		return
	}
	f := promauto.With(m.registry)
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	}, func() float64 { return float64(el.Stats().Total) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	}, func() float64 { return float64(el.Stats().Dropped) })
}

// WatchSaver exports profile saver counters, read at scrape time.
func (m *Metrics) WatchSaver(s *persist.Saver) {
	if s == nil {
		return
	}
	f := promauto.With(m.registry)
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "profile_saves_total",
		Help: "Profiles written to storage",
	}, func() float64 { return float64(s.Stats().Saved) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "profile_save_failures_total",
		Help: "Profile writes that returned an error",
	}, func() float64 { return float64(s.Stats().Failed) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "profile_saves_dropped_total",
		Help: "Profile saves dropped because the queue was full",
	}, func() float64 { return float64(s.Stats().Dropped) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "profile_save_queue_depth",
		Help: "Profile saves waiting to be written",
	}, func() float64 { return float64(s.Stats().Pending) })
}

// Handler serves the process metrics and the simulation metrics together.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, m.registry},
		promhttp.HandlerOpts{},
	)
}

// NewDebugServer builds the internal observability server: pprof, metrics
// and health. It must bind to loopback; other addresses are rewritten
// unless cfg.AllowExternal is set.
func NewDebugServer(cfg config.ObservabilityConfig, metrics *Metrics, log *zap.Logger) *http.Server {
	addr := cfg.ListenAddr
	if !cfg.AllowExternal && !isLoopback(addr) {
		log.Warn("debug server forced to localhost", zap.String("requested", addr))
		addr = "127.0.0.1:6060"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ServeDebug runs srv until ctx is cancelled.
func ServeDebug(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("debug server starting",
			zap.String("addr", srv.Addr),
			zap.String("pprof", "http://"+srv.Addr+"/debug/pprof/"),
			zap.String("metrics", "http://"+srv.Addr+"/metrics"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordConnectionRejected increments the rejection counter.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates the WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}
