package alert

import (
	"errors"
	"testing"
	"time"
)

func TestGate_SustainedTouchPlaysOnce(t *testing.T) {
	player := NewMockPlayer()
	notifier := NewMockNotifier()
	g := NewGate(player, notifier, DefaultMessage)

	for i := 0; i < 5; i++ {
		g.Trigger()
	}

	if player.Plays() != 1 {
		t.Errorf("Plays() = %d, want 1", player.Plays())
	}
	if g.Plays() != 1 {
		t.Errorf("gate Plays() = %d, want 1", g.Plays())
	}
	if g.Triggers() != 5 {
		t.Errorf("Triggers() = %d, want 5", g.Triggers())
	}
	if got := len(notifier.Messages()); got != 5 {
		t.Errorf("notifications = %d, want 5", got)
	}
	if g.Armed() {
		t.Error("Armed() = true while playback is running")
	}
}

func TestGate_RearmsOnPlaybackFinished(t *testing.T) {
	player := NewMockPlayer()
	g := NewGate(player, nil, DefaultMessage)

	g.Trigger()
	g.Trigger()
	if player.Plays() != 1 {
		t.Fatalf("Plays() = %d, want 1 before playback ends", player.Plays())
	}

	player.Finish()
	if !g.Armed() {
		t.Fatal("Armed() = false after playback finished")
	}

	g.Trigger()
	if player.Plays() != 2 {
		t.Errorf("Plays() = %d, want 2 after re-arm", player.Plays())
	}
}

func TestGate_NoRearmWithoutTrigger(t *testing.T) {
	player := NewMockPlayer()
	g := NewGate(player, nil, DefaultMessage)

	if !g.Armed() {
		t.Fatal("new gate should be armed")
	}
	if player.Plays() != 0 {
		t.Errorf("Plays() = %d, want 0 without triggers", player.Plays())
	}
}

func TestGate_PlayErrorRearms(t *testing.T) {
	player := NewMockPlayer()
	player.SetError(errors.New("no audio device"))
	notifier := NewMockNotifier()
	g := NewGate(player, notifier, DefaultMessage)

	g.Trigger()
	if !g.Armed() {
		t.Error("Armed() = false after failed play, want true")
	}
	if g.Plays() != 0 {
		t.Errorf("Plays() = %d, want 0", g.Plays())
	}
	if len(notifier.Messages()) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifier.Messages()))
	}

	player.SetError(nil)
	g.Trigger()
	if player.Plays() != 1 {
		t.Errorf("Plays() = %d, want 1 once the player recovers", player.Plays())
	}
}

func TestGate_NotifyErrorIgnored(t *testing.T) {
	player := NewMockPlayer()
	notifier := NewMockNotifier()
	notifier.SetError(errors.New("no notification daemon"))
	g := NewGate(player, notifier, Message{Title: "t", Body: "b"})

	g.Trigger()
	if player.Plays() != 1 {
		t.Errorf("Plays() = %d, want 1", player.Plays())
	}

	msgs := notifier.Messages()
	if len(msgs) != 1 || msgs[0].Title != "t" || msgs[0].Body != "b" {
		t.Errorf("Messages() = %+v, want one {t b}", msgs)
	}
}

func TestDesktopNotifier_Cooldown(t *testing.T) {
	now := time.Unix(1000, 0)
	var sent []string

	n := NewDesktopNotifier(3 * time.Second)
	n.now = func() time.Time { return now }
	n.send = func(title, body string) error {
		sent = append(sent, title)
		return nil
	}

	n.Notify("a", "")
	now = now.Add(time.Second)
	n.Notify("b", "")
	now = now.Add(2 * time.Second)
	n.Notify("c", "")

	if len(sent) != 2 || sent[0] != "a" || sent[1] != "c" {
		t.Errorf("sent = %v, want [a c]", sent)
	}

	s, d := n.Stats()
	if s != 2 || d != 1 {
		t.Errorf("Stats() = %d, %d, want 2, 1", s, d)
	}
}

func TestDesktopNotifier_SendError(t *testing.T) {
	n := NewDesktopNotifier(0)
	boom := errors.New("dbus unavailable")
	n.send = func(string, string) error { return boom }

	if err := n.Notify("t", "b"); !errors.Is(err, boom) {
		t.Errorf("Notify() error = %v, want %v", err, boom)
	}
}

func TestBeepPlayer_FinishesAfterBeep(t *testing.T) {
	p := NewBeepPlayer()
	p.beep = func(float64, int) error { return nil }

	done := make(chan struct{})
	p.OnPlaybackFinished(func() { close(done) })

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("playback finished event not emitted")
	}
}

func TestBeepPlayer_AlreadyPlaying(t *testing.T) {
	p := NewBeepPlayer()
	release := make(chan struct{})
	p.beep = func(float64, int) error {
		<-release
		return nil
	}
	defer close(release)

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if err := p.Play(); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("second Play() error = %v, want ErrAlreadyPlaying", err)
	}
}

func TestCommandPlayer_ProcessExitFinishes(t *testing.T) {
	p, err := NewCommandPlayer([]string{"true"}, "alert.wav", time.Second)
	if err != nil {
		t.Fatalf("NewCommandPlayer() error = %v", err)
	}

	done := make(chan struct{})
	p.OnPlaybackFinished(func() { close(done) })

	if err := p.Play(); err != nil {
		t.Skipf("true not runnable here: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback finished event not emitted")
	}
}

func TestCommandPlayer_StartError(t *testing.T) {
	p, err := NewCommandPlayer([]string{"/nonexistent/handsoff-player"}, "alert.wav", time.Second)
	if err != nil {
		t.Fatalf("NewCommandPlayer() error = %v", err)
	}

	called := false
	p.OnPlaybackFinished(func() { called = true })

	if err := p.Play(); err == nil {
		t.Fatal("Play() error = nil, want start failure")
	}
	if called {
		t.Error("finished event emitted for a playback that never started")
	}

	// The in-flight flag was cleared so a later attempt is not rejected as busy.
	if err := p.Play(); errors.Is(err, ErrAlreadyPlaying) {
		t.Error("Play() after start failure returned ErrAlreadyPlaying")
	}
}

func TestNewCommandPlayer_NoSound(t *testing.T) {
	if _, err := NewCommandPlayer([]string{"afplay"}, "", 0); err == nil {
		t.Error("NewCommandPlayer() without sound error = nil")
	}
}
