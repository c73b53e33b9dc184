package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-wedding/internal/config"
)

// -----------------------------------------------------------------------------
// Handler tests
// -----------------------------------------------------------------------------

func serve(t *testing.T, h http.Handler, method, target string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandler_ServingContent(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)
	expected := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.Update(expected)

	resp := serve(t, srv.Handler(), http.MethodGet, config.RouteTasksFeed, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expected, body)
}

func TestHandler_Head(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)
	srv.Update([]byte("DATA"))

	resp := serve(t, srv.Handler(), http.MethodHead, config.RouteTasksFeed, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_ETag(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)
	srv.Update([]byte("DATA_VERSION_1"))
	h := srv.Handler()

	etag := serve(t, h, http.MethodGet, config.RouteTasksFeed, nil).Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	resp := serve(t, h, http.MethodGet, config.RouteTasksFeed, map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)

	srv.Update([]byte("DATA_VERSION_2"))
	resp = serve(t, h, http.MethodGet, config.RouteTasksFeed, map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a new feed invalidates the old tag")
}

func TestHandler_IfModifiedSince(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)
	srv.Update([]byte("DATA"))
	h := srv.Handler()

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	resp := serve(t, h, http.MethodGet, config.RouteTasksFeed, map[string]string{config.HeaderIfModifiedSince: future})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	resp = serve(t, h, http.MethodGet, config.RouteTasksFeed, map[string]string{config.HeaderIfModifiedSince: past})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)

	resp := serve(t, srv.Handler(), http.MethodPost, config.RouteTasksFeed, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

func TestHandler_Initializing(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)

	resp := serve(t, srv.Handler(), http.MethodGet, config.RouteTasksFeed, nil)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestHandler_UnknownRoute(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)
	srv.Update([]byte("DATA"))

	resp := serve(t, srv.Handler(), http.MethodGet, "/calendar.ics", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := NewFeedServer("0", reg, reg)
	srv.Update([]byte("A"))
	srv.Update([]byte("B"))

	resp := serve(t, srv.Handler(), http.MethodGet, config.RouteMetrics, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "gowedding_feed_updates_total 2")
}

func TestHandler_NoMetricsWithoutGatherer(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)

	resp := serve(t, srv.Handler(), http.MethodGet, config.RouteMetrics, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Concurrency
// -----------------------------------------------------------------------------

// Run with -race.
func TestServer_ConcurrentUpdates(t *testing.T) {
	srv := NewFeedServer("0", nil, nil)
	h := srv.Handler()
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}
	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteTasksFeed, nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("unexpected status %d", w.Code)
				}
			}
		}()
	}
	wg.Wait()
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func TestServer_Lifecycle(t *testing.T) {
	srv := NewFeedServer(freePort(t), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start(ctx) }()

	url := srv.URL()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond)

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.Update([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown timed out")
	}
}

func TestServer_RequiresPort(t *testing.T) {
	err := NewFeedServer("", nil, nil).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
