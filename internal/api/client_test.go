package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-wedding/internal/api"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

// staticTokens is a TokenSource returning a fixed token.
type staticTokens string

func (s staticTokens) Token() (string, bool) {
	return string(s), s != ""
}

// newStubServer routes endpoint paths to canned handlers.
func newStubServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc("/api/"+path+config.EndpointSuffix, h)
	}
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// TestClient_Headers verifies bearer token, content type and user agent on
// an authenticated request.
func TestClient_Headers(t *testing.T) {
	ts := newStubServer(t, map[string]http.HandlerFunc{
		config.EndpointLoadRSVPs: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "Bearer t1", r.Header.Get(config.HeaderAuthorization))
			assert.Equal(t, config.MimeJSON, r.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
			assert.Empty(t, r.Header.Get(config.HeaderCSRFToken))
			_, _ = w.Write([]byte(`{"guests":[{"id":3,"fullName":"Ada","attendance":"yes","guestCount":2,"createdAt":"2025-03-01T10:00:00Z"}]}`))
		},
	})

	client := api.NewClient(ts.URL + "/api")
	client.Tokens = staticTokens("t1")

	guests, err := client.LoadGuests(context.Background())
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, model.ServerID(3), guests[0].ID)
	assert.Equal(t, "Ada", guests[0].FullName)
	assert.True(t, guests[0].CreatedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	ts := newStubServer(t, map[string]http.HandlerFunc{
		config.EndpointLogin: func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get(config.HeaderAuthorization))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a@b.com", body["email"])
			assert.Equal(t, "pw", body["password"])

			writeJSON(t, w, map[string]any{"success": true, "token": "t1", "user": map[string]any{"id": 1, "email": "a@b.com"}})
		},
	})

	client := api.NewClient(ts.URL + "/api")
	resp, err := client.Login(context.Background(), "a@b.com", "pw")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "t1", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, model.ServerID(1), resp.User.ID)
}

// TestClient_ErrorTaxonomy checks that each failure mode maps onto its kind.
func TestClient_ErrorTaxonomy(t *testing.T) {
	ts := newStubServer(t, map[string]http.HandlerFunc{
		config.EndpointLoadRSVPs: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		config.EndpointBudgetLoad: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		},
		config.EndpointGiftsLoad: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"gifts":"not-a-list"}`))
		},
		config.EndpointTasksLoad: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"tasks":[{"id":"t","dueDate":"tomorrow"}]}`))
		},
	})
	client := api.NewClient(ts.URL + "/api")
	ctx := context.Background()

	_, err := client.LoadGuests(ctx)
	assert.Equal(t, api.KindServerStatus, api.KindOf(err))
	code, ok := api.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, code)

	_, err = client.LoadBudget(ctx)
	assert.Equal(t, api.KindMalformedResponse, api.KindOf(err))

	_, err = client.LoadGifts(ctx)
	assert.Equal(t, api.KindDecodeFailure, api.KindOf(err))

	_, err = client.LoadTasks(ctx)
	assert.Equal(t, api.KindDecodeFailure, api.KindOf(err), "non ISO-8601 dates are shape errors")
}

func TestClient_InvalidEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{"UnsupportedScheme", "ftp://example.com/api"},
		{"MissingHost", "http:///api"},
		{"Unparsable", string([]byte{0x7f})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := api.NewClient(tt.baseURL)
			_, err := client.LoadGuests(context.Background())
			require.Error(t, err)
			assert.Equal(t, api.KindInvalidEndpoint, api.KindOf(err))
		})
	}
}

func TestClient_Transport(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close() // nothing listens anymore

	client := api.NewClient(url)
	_, err := client.LoadGuests(context.Background())

	require.Error(t, err)
	assert.Equal(t, api.KindTransport, api.KindOf(err))
}

func TestClient_SaveRejected(t *testing.T) {
	ts := newStubServer(t, map[string]http.HandlerFunc{
		config.EndpointTasksSave: func(w http.ResponseWriter, r *http.Request) {
			var body model.TaskData
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body.Tasks, 1)
			writeJSON(t, w, map[string]any{"success": false, "message": "quota"})
		},
		config.EndpointBudgetSave: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"success": true})
		},
	})
	client := api.NewClient(ts.URL + "/api")

	err := client.SaveTasks(context.Background(), model.TaskData{Tasks: []model.WeddingTask{{ID: "a", Title: "x", Priority: model.PriorityLow}}})
	assert.ErrorIs(t, err, api.ErrRejected)
	assert.Contains(t, err.Error(), "quota")

	assert.NoError(t, client.SaveBudget(context.Background(), model.BudgetData{}))
}

// TestClient_CSRF verifies that a token is fetched for mutating requests only.
func TestClient_CSRF(t *testing.T) {
	csrfCalls := 0
	ts := newStubServer(t, map[string]http.HandlerFunc{
		"auth/csrf": func(w http.ResponseWriter, r *http.Request) {
			csrfCalls++
			writeJSON(t, w, map[string]string{"token": "csrf-1"})
		},
		config.EndpointGiftsSave: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "csrf-1", r.Header.Get(config.HeaderCSRFToken))
			writeJSON(t, w, map[string]any{"success": true})
		},
		config.EndpointGiftsLoad: func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get(config.HeaderCSRFToken))
			writeJSON(t, w, model.GiftData{})
		},
	})
	client := api.NewClient(ts.URL + "/api")
	client.CSRFEndpoint = "auth/csrf"

	_, err := client.LoadGifts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, csrfCalls)

	require.NoError(t, client.SaveGifts(context.Background(), model.GiftData{}))
	assert.Equal(t, 1, csrfCalls)
}

func TestClient_CSRFFailureAborts(t *testing.T) {
	saved := false
	ts := newStubServer(t, map[string]http.HandlerFunc{
		"auth/csrf": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]string{})
		},
		config.EndpointGiftsSave: func(w http.ResponseWriter, r *http.Request) {
			saved = true
		},
	})
	client := api.NewClient(ts.URL + "/api")
	client.CSRFEndpoint = "auth/csrf"

	err := client.SaveGifts(context.Background(), model.GiftData{})
	assert.Equal(t, api.KindDecodeFailure, api.KindOf(err))
	assert.False(t, saved)
}

func TestClient_Metrics(t *testing.T) {
	ts := newStubServer(t, map[string]http.HandlerFunc{
		config.EndpointLoadRSVPs: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	})
	reg := prometheus.NewRegistry()
	client := api.NewClient(ts.URL + "/api")
	client.Metrics = api.NewMetrics(reg)

	_, _ = client.LoadGuests(context.Background())

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "gowedding_api_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels[config.MetricLabelOutcome] == api.KindServerStatus.String() {
				found = true
				assert.Equal(t, 1.0, m.GetCounter().GetValue())
				assert.Equal(t, config.EndpointLoadRSVPs, labels[config.MetricLabelEndpoint])
			}
		}
	}
	assert.True(t, found, "request counter with server_status outcome must be recorded")
}

func TestClient_ContextCancelled(t *testing.T) {
	ts := newStubServer(t, map[string]http.HandlerFunc{
		config.EndpointLoadRSVPs: func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		},
	})
	client := api.NewClient(ts.URL + "/api")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.LoadGuests(ctx)
	assert.Equal(t, api.KindTransport, api.KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_SetBaseURL(t *testing.T) {
	client := api.NewClient("http://old.example")
	client.SetBaseURL("https://new.example/api")
	assert.Equal(t, "https://new.example/api", client.BaseURL())
}
