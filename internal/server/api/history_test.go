package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handsoff/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestEpisodesHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewEpisodesHandler(s)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := &store.Episode{StartedAt: base.Add(time.Duration(i) * time.Second), Ticks: i + 1}
		if err := s.Episodes().Create(e); err != nil {
			t.Fatalf("failed to create episode: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/episodes?limit=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listEpisodesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(response.Episodes))
	}
	if response.Episodes[0].Ticks != 3 {
		t.Errorf("expected newest episode first, got ticks=%d", response.Episodes[0].Ticks)
	}
}

func TestEpisodesHandler_EmptyList(t *testing.T) {
	handler := NewEpisodesHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/episodes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Body.String() != "{\"episodes\":[]}\n" {
		t.Errorf("expected empty array, got %q", rec.Body.String())
	}
}

func TestEpisodesHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewEpisodesHandler(s)

	e := &store.Episode{Ticks: 4, Sounds: 1}
	s.Episodes().Create(e)

	t.Run("existing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/episodes/"+e.ID, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var got store.Episode
		json.NewDecoder(rec.Body).Decode(&got)
		if got.ID != e.ID || got.Ticks != 4 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/episodes/nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/episodes/"+e.ID, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestTrainingRunsHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewTrainingRunsHandler(s)

	now := time.Now()
	s.TrainingRuns().Create(&store.TrainingRun{Label: "not_touch", Requested: 50, Collected: 50, StartedAt: now, FinishedAt: now})

	req := httptest.NewRequest(http.MethodGet, "/api/training-runs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listTrainingRunsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.TrainingRuns) != 1 || response.TrainingRuns[0].Label != "not_touch" {
		t.Errorf("unexpected response %+v", response)
	}
}

func TestLimitParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 100},
		{"?limit=5", 5},
		{"?limit=0", 0},
		{"?limit=-3", 100},
		{"?limit=abc", 100},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/episodes"+tt.query, nil)
		if got := limitParam(req, 100); got != tt.want {
			t.Errorf("limitParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
