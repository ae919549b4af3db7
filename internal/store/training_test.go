package store

import (
	"errors"
	"testing"
	"time"
)

func TestTrainingRunRepository_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.TrainingRuns()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	runs := []*TrainingRun{
		{Label: "not_touch", Requested: 50, Collected: 50, StartedAt: start, FinishedAt: start.Add(5 * time.Second)},
		{Label: "touched", Requested: 50, Collected: 12, StartedAt: start.Add(time.Minute), FinishedAt: start.Add(time.Minute + time.Second), Error: "camera unplugged"},
	}
	for _, r := range runs {
		if err := repo.Create(r); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if r.ID == "" {
			t.Error("Create() should assign an ID")
		}
	}

	got, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() = %d runs, want 2", len(got))
	}
	if got[0].Label != "touched" || got[0].Succeeded() {
		t.Errorf("latest run = %+v, want failed touched run", got[0])
	}
	if got[1].Label != "not_touch" || !got[1].Succeeded() {
		t.Errorf("first run = %+v, want successful not_touch run", got[1])
	}
}

func TestTrainingRunRepository_RejectsUnknownLabel(t *testing.T) {
	s := newTestStore(t)

	err := s.TrainingRuns().Create(&TrainingRun{Label: "waving", StartedAt: time.Now(), FinishedAt: time.Now()})
	if err == nil {
		t.Error("Create() with unknown label should fail the CHECK constraint")
	}
}

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("threshold"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing key error = %v, want ErrNotFound", err)
	}

	if err := repo.Set("threshold", "0.8"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("threshold", "0.9"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	v, err := repo.Get("threshold")
	if err != nil || v != "0.9" {
		t.Errorf("Get() = %q, %v, want 0.9", v, err)
	}

	repo.Set("camera", "0")
	all, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 || all["camera"] != "0" {
		t.Errorf("All() = %v", all)
	}
}
