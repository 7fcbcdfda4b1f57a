package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func TestWriteErrorMapsDomainCodes(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{usecase.CodeValidation, http.StatusBadRequest},
		{usecase.CodeStudentNotFound, http.StatusNotFound},
		{usecase.CodeDuplicateFound, http.StatusConflict},
		{usecase.CodeRestoreExpired, http.StatusGone},
		{usecase.CodeInvalidTransition, http.StatusUnprocessableEntity},
		{usecase.CodeNotInTrash, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, loggerOrNop(nil), &usecase.DomainError{Code: tc.code, Message: "falhou"})

			assert.Equal(t, tc.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, "falhou", body.Message)
		})
	}
}

func TestWriteErrorDuplicateCarriesVerdict(t *testing.T) {
	rec := httptest.NewRecorder()
	verdict := &usecase.DuplicateVerdict{IsDuplicate: true, MatchedFields: []usecase.FieldKind{usecase.FieldEmail}}

	writeError(rec, loggerOrNop(nil), &usecase.DomainError{Code: usecase.CodeDuplicateFound, Message: "duplicado", Verdict: verdict})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_duplicate":true`)
}

func TestWriteErrorHidesTechnicalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &usecase.TechnicalError{Code: usecase.CodeDatabase, Message: "falha", Err: errors.New("pq: senha errada")}

	writeError(rec, loggerOrNop(nil), err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "senha")
	assert.Contains(t, rec.Body.String(), usecase.CodeDatabase)
}

type fakeCapturer struct {
	out   *usecase.CaptureLeadOutput
	err   error
	calls int
}

func (f *fakeCapturer) Execute(_ context.Context, _ usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error) {
	f.calls++
	return f.out, f.err
}

func postLead(h *LeadHandler, body, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
	rec := httptest.NewRecorder()
	h.CaptureLead(rec, req)
	return rec
}

func TestCaptureLeadStatuses(t *testing.T) {
	capturer := &fakeCapturer{out: &usecase.CaptureLeadOutput{StudentID: "s-1", Created: true}}
	h := NewLeadHandler(capturer, NewRateLimiter(10, time.Minute), nil)

	rec := postLead(h, `{"email":"ana@x.com"}`, "1.1.1.1")
	assert.Equal(t, http.StatusCreated, rec.Code)

	capturer.out = &usecase.CaptureLeadOutput{StudentID: "s-1", Created: false}
	rec = postLead(h, `{"email":"ana@x.com"}`, "1.1.1.1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postLead(h, `{"email":"  "}`, "1.1.1.1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLead(h, `{email`, "1.1.1.1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, capturer.calls)
}

func TestCaptureLeadRateLimitedPerIP(t *testing.T) {
	capturer := &fakeCapturer{out: &usecase.CaptureLeadOutput{StudentID: "s-1", Created: true}}
	h := NewLeadHandler(capturer, NewRateLimiter(2, time.Minute), nil)

	assert.Equal(t, http.StatusCreated, postLead(h, `{"email":"a@x.com"}`, "2.2.2.2").Code)
	assert.Equal(t, http.StatusCreated, postLead(h, `{"email":"a@x.com"}`, "2.2.2.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, postLead(h, `{"email":"a@x.com"}`, "2.2.2.2").Code)
	assert.Equal(t, http.StatusCreated, postLead(h, `{"email":"a@x.com"}`, "3.3.3.3").Code)
}

func TestRateLimiterWindowAndEvict(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("ip"))
	assert.False(t, rl.Allow("ip"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("ip"))

	now = now.Add(3 * time.Minute)
	rl.evict()
	assert.Empty(t, rl.visitors)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeConnState struct{ closed bool }

func (f fakeConnState) IsClosed() bool { return f.closed }

func TestHealthHandler(t *testing.T) {
	t.Run("healthy sem rabbit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(fakePinger{}, nil, "1.0.0").Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "not configured", body.Dependencies["rabbitmq"])
	})

	t.Run("degraded", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(fakePinger{}, fakeConnState{closed: true}, "1.0.0").Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("banco fora", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(fakePinger{err: errors.New("timeout")}, fakeConnState{}, "1.0.0").Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "unhealthy: timeout")
	})
}

type fakeChecker struct {
	mu     sync.Mutex
	inputs []usecase.DuplicateCheckInput
	result usecase.DuplicateVerdict
}

func (f *fakeChecker) Check(_ context.Context, in usecase.DuplicateCheckInput) usecase.DuplicateVerdict {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return f.result
}

func duplicateVerdict() usecase.DuplicateVerdict {
	return usecase.DuplicateVerdict{
		IsDuplicate:   true,
		Match:         &entity.Student{ID: "s-9", Name: "Maria Silva"},
		MatchedFields: []usecase.FieldKind{usecase.FieldName},
	}
}

func TestDuplicateCheck(t *testing.T) {
	checker := &fakeChecker{result: duplicateVerdict()}
	h := NewDuplicateHandler(checker, 0, nil)

	req := httptest.NewRequest(http.MethodPost, "/students/duplicates/check",
		strings.NewReader(`{"name":"Maria Silva","exclude_id":"s-1"}`))
	rec := httptest.NewRecorder()
	h.Check(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got usecase.DuplicateVerdict
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.IsDuplicate)
	assert.Equal(t, "s-9", got.Match.ID)
	require.Len(t, checker.inputs, 1)
	assert.Equal(t, "s-1", checker.inputs[0].ExcludeID)
}

type verdictFrame struct {
	Event string                   `json:"event"`
	Data  usecase.DuplicateVerdict `json:"data"`
}

func dialDuplicates(t *testing.T, h *DuplicateHandler) *websocket.Conn {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/ws/duplicates", h.Watch)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/duplicates"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestDuplicateWatchPublishesCheckingThenVerdict(t *testing.T) {
	checker := &fakeChecker{result: duplicateVerdict()}
	conn := dialDuplicates(t, NewDuplicateHandler(checker, 20*time.Millisecond, nil))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"input","data":{"email":"joao@x.com","name":"Maria Silva"}}`)))

	var pending verdictFrame
	require.NoError(t, conn.ReadJSON(&pending))
	assert.Equal(t, "verdict", pending.Event)
	assert.True(t, pending.Data.Checking)
	assert.False(t, pending.Data.IsDuplicate)

	var final verdictFrame
	require.NoError(t, conn.ReadJSON(&final))
	assert.Equal(t, "verdict", final.Event)
	assert.True(t, final.Data.IsDuplicate)
	assert.Equal(t, "s-9", final.Data.Match.ID)

	checker.mu.Lock()
	defer checker.mu.Unlock()
	require.Len(t, checker.inputs, 1)
	assert.Equal(t, "joao@x.com", checker.inputs[0].Email)
	assert.Equal(t, "Maria Silva", checker.inputs[0].Name)
}

func TestDuplicateWatchRejectsUnknownEvent(t *testing.T) {
	checker := &fakeChecker{result: duplicateVerdict()}
	conn := dialDuplicates(t, NewDuplicateHandler(checker, 20*time.Millisecond, nil))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"ping","data":{"name":"Maria Silva"}}`)))

	var frame struct {
		Event string        `json:"event"`
		Data  ErrorResponse `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Event)
	assert.Equal(t, usecase.CodeValidation, frame.Data.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"name":"Maria Silva"}`)))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Event)

	checker.mu.Lock()
	defer checker.mu.Unlock()
	assert.Empty(t, checker.inputs)
}
