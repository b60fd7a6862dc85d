package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []CallEvent
}

func (o *recordingObserver) OnCallComplete(e CallEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func testClient(url string) *Client {
	return NewClient(ClientConfig{
		BaseURL:    url,
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		Actor:      domain.Actor{UserID: "u-pm", Name: "Pat", Role: domain.RoleProjectManager},
	}, NoopObserver{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_GetQuote_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/quote-requests/q-1", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "u-pm", r.Header.Get(HeaderUserID))
		assert.Equal(t, "project_manager", r.Header.Get(HeaderUserRole))
		writeJSON(w, http.StatusOK, QuoteJSON{ID: "q-1", Title: "Roof", Status: "quoted", QuotedAmount: domain.Float64Ptr(1200)})
	}))
	defer srv.Close()

	q, err := testClient(srv.URL).GetQuote(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, "Roof", q.Title)
	assert.Equal(t, domain.QuoteQuoted, q.Status)
	require.NotNil(t, q.QuotedAmount)
	assert.Equal(t, 1200.0, *q.QuotedAmount)
}

func TestClient_ListQuotes_EncodesFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"pending", "in_review"}, r.URL.Query()["status"])
		assert.Equal(t, "u-field", r.URL.Query().Get("submitted_by"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []QuoteJSON{{ID: "a"}, {ID: "b"}})
	}))
	defer srv.Close()

	quotes, err := testClient(srv.URL).ListQuotes(context.Background(), QuoteQuery{
		Statuses:      []domain.QuoteStatus{domain.QuotePending, domain.QuoteInReview},
		SubmittedByID: "u-field",
		Limit:         25,
	})
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestClient_RetriesReadsOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, ErrorJSON{Code: CodeInternal, Detail: "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, QueueStatsJSON{PendingQuotes: 3, TotalActionNeeded: 3})
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := testClient(srv.URL)
	c.observer = obs

	stats, err := c.QueueStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PendingQuotes)
	assert.Equal(t, int32(2), attempts.Load())
	require.Len(t, obs.events, 1)
	assert.Equal(t, 2, obs.events[0].Attempts)
	assert.True(t, obs.events[0].Success)
}

func TestClient_WritesAreSentOnceWithKey(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		assert.Equal(t, "key-123", r.Header.Get(HeaderIdempotencyKey))
		var body QuoteJSON
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Roof leak", body.Title)
		writeJSON(w, http.StatusInternalServerError, ErrorJSON{Code: CodeInternal, Detail: "boom"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreateQuote(context.Background(), &domain.QuoteRequest{Title: "Roof leak", Description: "d"}, "key-123")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_MapsErrorBodies(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, CodeNotFound, func(err error) bool { return errors.Is(err, ErrNotFound) }},
		{"forbidden", http.StatusForbidden, CodeForbidden, func(err error) bool { return errors.Is(err, ErrForbidden) }},
		{"validation", http.StatusUnprocessableEntity, CodeValidation, domain.IsValidation},
		{"transition", http.StatusConflict, CodeInvalidTransition, domain.IsInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, ErrorJSON{Code: tc.code, Detail: tc.name})
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).UpdateQuote(context.Background(), "q-1", QuoteUpdate{Status: domain.QuoteDeclined})
			require.Error(t, err)
			assert.True(t, tc.check(err), "got %v", err)
			assert.False(t, errors.Is(err, ErrOutcomeUnknown))
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, NoopObserver{})

	_, err := c.GetProject(context.Background(), "p-1")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, IsTransient(err))

	_, err = c.ConvertQuote(context.Background(), "q-1", "key")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, errors.Is(err, ErrOutcomeUnknown), "a refused dial never reached the server")
}

func TestClient_WriteTimeoutIsOutcomeUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeJSON(w, http.StatusOK, ConvertJSON{ProjectID: "p-1"})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, NoopObserver{})
	_, err := c.ConvertQuote(context.Background(), "q-1", "key")
	assert.ErrorIs(t, err, ErrOutcomeUnknown)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_CanceledIsSilent(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := testClient(srv.URL).ListRFIs(ctx, "p-1", domain.OpenRFIStatuses...)
	assert.True(t, IsCancellation(err), "got %v", err)
	assert.Equal(t, "CANCELED", errorCode(err))
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusBadGateway, ErrorJSON{Code: CodeInternal})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second}, NoopObserver{})
	for i := 0; i < 4; i++ {
		_, err := c.GetTask(context.Background(), "t-1")
		require.Error(t, err)
	}

	_, err := c.GetTask(context.Background(), "t-1")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int32(4), hits.Load(), "open breaker short-circuits")
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorJSON{Code: CodeNotFound})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second}, NoopObserver{})
	for i := 0; i < 6; i++ {
		_, err := c.GetTask(context.Background(), "t-1")
		assert.ErrorIs(t, err, ErrNotFound)
	}
}
