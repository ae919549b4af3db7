package store

import (
	"errors"
	"testing"
	"time"
)

func TestEpisodeRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Episodes()

	e := &Episode{PeakConfidence: 0.67, Ticks: 1, Sounds: 1}
	if err := repo.Create(e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.ID == "" {
		t.Error("Create() should assign an ID")
	}
	if e.StartedAt.IsZero() {
		t.Error("Create() should set StartedAt")
	}

	got, err := repo.GetByID(e.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PeakConfidence != 0.67 || got.Ticks != 1 || got.Sounds != 1 {
		t.Errorf("GetByID() = %+v", got)
	}
	if !got.Open() {
		t.Error("new episode should be open")
	}
}

func TestEpisodeRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Episodes()

	e := &Episode{Ticks: 1}
	if err := repo.Create(e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ended := e.StartedAt.Add(3 * time.Second)
	e.EndedAt = &ended
	e.Ticks = 3
	e.PeakConfidence = 1
	if err := repo.Update(e); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(e.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Open() {
		t.Fatal("episode should be closed after update")
	}
	if got.Ticks != 3 || got.PeakConfidence != 1 {
		t.Errorf("GetByID() = %+v", got)
	}
	if d := got.Duration(); d < 2900*time.Millisecond || d > 3100*time.Millisecond {
		t.Errorf("Duration() = %s, want ~3s", d)
	}
}

func TestEpisodeRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Episodes()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(&Episode{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestEpisodeRepository_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	repo := s.Episodes()

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := &Episode{StartedAt: base.Add(time.Duration(i) * time.Minute), Ticks: i + 1}
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(0) = %d episodes, want 3", len(all))
	}
	if all[0].Ticks != 3 || all[2].Ticks != 1 {
		t.Errorf("List() order = %d,%d,%d, want 3,2,1", all[0].Ticks, all[1].Ticks, all[2].Ticks)
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) = %d episodes", len(limited))
	}
}

func TestEpisodeRepository_CloseOpen(t *testing.T) {
	s := newTestStore(t)
	repo := s.Episodes()

	open := &Episode{Ticks: 2}
	repo.Create(open)
	ended := time.Now()
	closed := &Episode{Ticks: 1, EndedAt: &ended}
	repo.Create(closed)

	n, err := repo.CloseOpen(time.Now())
	if err != nil {
		t.Fatalf("CloseOpen() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CloseOpen() = %d, want 1", n)
	}

	got, _ := repo.GetByID(open.ID)
	if got.Open() {
		t.Error("episode should be closed")
	}
}

func TestEpisodeRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Episodes()

	e := &Episode{}
	repo.Create(e)
	if err := repo.Delete(e.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}
