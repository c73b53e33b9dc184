// Package server publishes the tasks calendar and the client metrics on the
// loopback interface, so calendar apps can subscribe to the planner's deadlines.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-wedding/internal/config"
)

// feed is one rendered calendar and its HTTP caching metadata.
type feed struct {
	data         []byte
	etag         string
	lastModified string // http.TimeFormat
}

// FeedServer serves the latest calendar handed to Update.
type FeedServer struct {
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	Port     string

	// readers vastly outnumber Update calls
	current atomic.Pointer[feed]

	updates prometheus.Counter
}

// NewFeedServer creates a server for the given port. When reg is not nil the
// server registers its own counters on it.
func NewFeedServer(port string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *FeedServer {
	s := &FeedServer{Port: port, Gatherer: gatherer}
	s.updates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.MetricsNamespace,
		Subsystem: config.MetricsSubsystemFeed,
		Name:      "updates_total",
		Help:      "Number of calendar feeds published.",
	})
	if reg != nil {
		reg.MustRegister(s.updates)
	}
	return s
}

// Handler builds the router. It is exposed for tests and embedding.
func (s *FeedServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(config.RouteTasksFeed, s.handleFeed).Methods(http.MethodGet, http.MethodHead)
	if s.Gatherer != nil {
		r.Handle(config.RouteMetrics, promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	})
	return r
}

// Start listens on 127.0.0.1 and blocks until ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(config.LocalhostBindAddr, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, 1)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil
	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update replaces the served calendar. Concurrent readers see either the old
// or the new feed, never a mix.
func (s *FeedServer) Update(data []byte) {
	sum := sha256.Sum256(data)
	f := &feed{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(sum[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.current.Store(f)
	if s.updates != nil {
		s.updates.Inc()
	}

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, f.etag)
}

// URL is the address calendar apps subscribe to.
func (s *FeedServer) URL() string {
	return "http://" + net.JoinHostPort(config.LocalhostBindAddr, s.Port) + config.RouteTasksFeed
}

func (s *FeedServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	f := s.current.Load()
	if f == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, f.etag)
	h.Set(config.HeaderLastModified, f.lastModified)

	if notModified(r, f) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(f.data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err)
	}
}

// notModified evaluates If-None-Match first, then If-Modified-Since.
func notModified(r *http.Request, f *feed) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == f.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, f.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
