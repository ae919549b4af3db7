package tray

import (
	"errors"
	"strings"
	"testing"

	"github.com/ayusman/handsoff/internal/classifier"
	"github.com/ayusman/handsoff/internal/session"
)

type fakeItem struct {
	title   string
	enabled bool
}

func (f *fakeItem) SetTitle(title string) { f.title = title }
func (f *fakeItem) Enable()               { f.enabled = true }
func (f *fakeItem) Disable()              { f.enabled = false }

type fakeMenu struct {
	trainA, trainB, run, stop, status fakeItem
	title                             string
}

func newTestTray() (*Tray, *fakeMenu) {
	m := &fakeMenu{}
	t := New()
	t.menuTrainA = &m.trainA
	t.menuTrainB = &m.trainB
	t.menuRun = &m.run
	t.menuStop = &m.stop
	t.menuStatus = &m.status
	t.setTitle = func(s string) { m.title = s }
	t.renderLocked()
	return t, m
}

func TestTray_ButtonsFollowPhase(t *testing.T) {
	tr, m := newTestTray()

	tests := []struct {
		phase                     session.Phase
		trainA, trainB, run, stop bool
	}{
		{session.Idle, true, false, false, false},
		{session.TrainingA, false, false, false, false},
		{session.AwaitingB, false, true, false, false},
		{session.TrainingB, false, false, false, false},
		{session.ReadyToDetect, false, false, true, false},
		{session.Detecting, false, false, false, true},
		{session.Stopped, false, false, false, false},
	}

	for _, tt := range tests {
		tr.OnPhase(tt.phase, session.ActionsFor(tt.phase))
		got := [4]bool{m.trainA.enabled, m.trainB.enabled, m.run.enabled, m.stop.enabled}
		want := [4]bool{tt.trainA, tt.trainB, tt.run, tt.stop}
		if got != want {
			t.Errorf("%s: enabled = %v, want %v", tt.phase, got, want)
		}
	}
}

func TestTray_TouchedStatus(t *testing.T) {
	tr, m := newTestTray()
	tr.OnPhase(session.Detecting, session.ActionsFor(session.Detecting))

	tr.OnTouched(true, classifier.Result{Label: classifier.Touched})
	if m.status.title != "Hands off!" || m.title != "Hands off!" {
		t.Errorf("status = %q, title = %q, want Hands off!", m.status.title, m.title)
	}

	tr.OnTouched(false, classifier.Result{})
	if m.status.title != "Watching" || m.title != "Hands off" {
		t.Errorf("status = %q, title = %q after release", m.status.title, m.title)
	}

	tr.OnTouched(true, classifier.Result{})
	tr.OnPhase(session.Stopped, session.ActionsFor(session.Stopped))
	if tr.Status() != "Stopped" || m.title != "Hands off" {
		t.Errorf("Status() = %q, title = %q after stop", tr.Status(), m.title)
	}
}

func TestTray_Progress(t *testing.T) {
	tr, m := newTestTray()
	tr.OnPhase(session.TrainingA, session.ActionsFor(session.TrainingA))
	tr.OnProgress(classifier.NotTouched, 0.42)

	if m.status.title != "Training... 42%" {
		t.Errorf("status = %q", m.status.title)
	}
}

func TestTray_Error(t *testing.T) {
	tr, m := newTestTray()
	tr.OnError(errors.New("camera unplugged"))

	if !strings.Contains(m.status.title, "camera unplugged") {
		t.Errorf("status = %q, want the error", m.status.title)
	}
}

func TestTray_HandleActionRespectsEnabled(t *testing.T) {
	tr, _ := newTestTray()

	var got []session.Action
	tr.OnAction(func(a session.Action) { got = append(got, a) })

	tr.handleAction(session.ActionDetect)
	tr.handleAction(session.ActionTrainA)

	if len(got) != 1 || got[0] != session.ActionTrainA {
		t.Errorf("actions forwarded = %v, want [train_a]", got)
	}
}

func TestTray_OpenUI(t *testing.T) {
	tr := New()
	called := false
	tr.OnOpenUI(func() { called = true })
	tr.handleOpenUI()
	if !called {
		t.Error("OnOpenUI callback not called")
	}
}

func TestStatusText(t *testing.T) {
	if s := statusText(session.Idle, false, 0); !strings.Contains(s, "Train 1") {
		t.Errorf("idle status = %q", s)
	}
	if s := statusText(session.AwaitingB, false, 0); !strings.Contains(s, "Train 2") {
		t.Errorf("awaiting_b status = %q", s)
	}
	if s := statusText(session.TrainingB, false, 1); s != "Training... 100%" {
		t.Errorf("training status = %q", s)
	}
}
