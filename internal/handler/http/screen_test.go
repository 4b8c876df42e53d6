package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/feature"
	"github.com/utafrali/storefront/internal/mvi"
	"github.com/utafrali/storefront/pkg/httputil"
)

// ============================================================================
// Test screen
// ============================================================================

type noteState struct {
	Notes []string `json:"notes"`
}

type noteEvent interface{ isNoteEvent() }

type addNote struct {
	Text string `json:"text" validate:"required"`
}

type clearNotes struct{}

func (addNote) isNoteEvent()    {}
func (clearNotes) isNoteEvent() {}

type noteAdded struct {
	Text string `json:"text"`
}

func (noteAdded) Kind() string { return "note_added" }

var noteEvents = feature.Events[noteEvent]{
	"add_note":    feature.Payload(func(e addNote) noteEvent { return e }),
	"clear_notes": feature.Static[noteEvent](clearNotes{}),
}

type noteStore = mvi.Store[noteState, noteEvent, noteAdded]

func handleNote(ctx context.Context, s *noteStore, event noteEvent) error {
	switch e := event.(type) {
	case addNote:
		s.Update(func(st noteState) noteState {
			st.Notes = append(append([]string(nil), st.Notes...), e.Text)
			return st
		})
		s.Emit(ctx, noteAdded{Text: e.Text})
	case clearNotes:
		s.SetState(noteState{})
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newNoteStore(t *testing.T) *noteStore {
	t.Helper()
	s := mvi.New(context.Background(), noteState{}, handleNote, mvi.WithName(t.Name()), mvi.WithLogger(testLogger()))
	t.Cleanup(s.Close)
	return s
}

func setupScreen(t *testing.T, store *noteStore) *chi.Mux {
	t.Helper()
	h := NewScreenHandler("notes", store, noteEvents, testLogger())
	h.keepAlive = 20 * time.Millisecond
	r := chi.NewRouter()
	r.Route("/api/v1/notes", h.Routes(nil))
	return r
}

func postEvent(t *testing.T, r http.Handler, screen, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/"+screen+"/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, body io.Reader) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

// readFrame reads one SSE frame, skipping ping comments.
func readFrame(t *testing.T, rd *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && data != "":
			return event, data
		}
	}
}

// ============================================================================
// Snapshot and inbox
// ============================================================================

func TestGetState_ReturnsCurrentState(t *testing.T) {
	store := mvi.New(context.Background(), noteState{Notes: []string{"first"}}, handleNote, mvi.WithLogger(testLogger()))
	t.Cleanup(store.Close)
	r := setupScreen(t, store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notes/state", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"notes":["first"]}}`, rec.Body.String())
}

func TestPostEvent_SubmitsDecodedEvent(t *testing.T) {
	store := newNoteStore(t)
	r := setupScreen(t, store)

	rec := postEvent(t, r, "notes", `{"type":"add_note","text":"buy milk"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	resp := decodeResponse(t, rec.Body)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "addNote", data["type"])

	require.Eventually(t, func() bool {
		return len(store.State().Notes) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"buy milk"}, store.State().Notes)
}

func TestPostEvent_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty body", ``, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", `{"type":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing type", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown type", `{"type":"explode"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"invalid payload", `{"type":"add_note","text":""}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newNoteStore(t)
			r := setupScreen(t, store)

			rec := postEvent(t, r, "notes", tc.body)

			assert.Equal(t, tc.status, rec.Code)
			resp := decodeResponse(t, rec.Body)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.Equal(t, 0, store.Pending())
		})
	}
}

func TestPostEvent_ValidationErrorListsFields(t *testing.T) {
	r := setupScreen(t, newNoteStore(t))

	rec := postEvent(t, r, "notes", `{"type":"add_note"}`)

	resp := decodeResponse(t, rec.Body)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "is required", resp.Error.Fields["text"])
}

func TestPostEvent_ClosedStoreReturnsGone(t *testing.T) {
	store := newNoteStore(t)
	r := setupScreen(t, store)
	store.Close()

	rec := postEvent(t, r, "notes", `{"type":"clear_notes"}`)

	assert.Equal(t, http.StatusGone, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, "GONE", resp.Error.Code)
}

func TestPostEvent_RejectsNonJSONContentType(t *testing.T) {
	r := setupScreen(t, newNoteStore(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/events", strings.NewReader("type=clear_notes"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// Streams
// ============================================================================

func TestStreamState_SendsCurrentThenUpdates(t *testing.T) {
	store := newNoteStore(t)
	srv := httptest.NewServer(setupScreen(t, store))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notes/state/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	rd := bufio.NewReader(resp.Body)

	event, data := readFrame(t, rd)
	assert.Equal(t, "state", event)
	assert.JSONEq(t, `{"notes":null}`, data)

	require.NoError(t, store.Submit(addNote{Text: "hello"}))

	event, data = readFrame(t, rd)
	assert.Equal(t, "state", event)
	assert.JSONEq(t, `{"notes":["hello"]}`, data)
}

func TestStreamEffects_NamesFramesByKind(t *testing.T) {
	store := newNoteStore(t)
	srv := httptest.NewServer(setupScreen(t, store))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notes/effects/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, store.Submit(addNote{Text: "saved"}))

	event, data := readFrame(t, bufio.NewReader(resp.Body))
	assert.Equal(t, "note_added", event)
	assert.JSONEq(t, `{"text":"saved"}`, data)
}

func TestStreamState_EndsWhenStoreCloses(t *testing.T) {
	store := newNoteStore(t)
	srv := httptest.NewServer(setupScreen(t, store))
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/notes/state/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	rd := bufio.NewReader(resp.Body)
	readFrame(t, rd)
	store.Close()

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, rd)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end")
	}
}

func TestEventType(t *testing.T) {
	assert.Equal(t, "addNote", eventType(addNote{}))
	assert.Equal(t, "clearNotes", eventType(clearNotes{}))
}
