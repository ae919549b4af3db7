// Package tray provides the system tray menu for handsoff.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handsoff/internal/classifier"
	"github.com/ayusman/handsoff/internal/session"
)

// menuItem is the subset of *systray.MenuItem the tray updates.
type menuItem interface {
	SetTitle(title string)
	Enable()
	Disable()
}

// Tray is the system tray front end: Train 1, Train 2 and Run buttons that
// follow the session's enabled actions, plus a status line. It is a
// session.Observer.
type Tray struct {
	onAction func(session.Action)
	onOpenUI func()
	onQuit   func()
	mu       sync.RWMutex

	phase    session.Phase
	actions  session.Actions
	touched  bool
	progress float64

	// Menu items stored for later updates
	menuTrainA menuItem
	menuTrainB menuItem
	menuRun    menuItem
	menuStop   menuItem
	menuStatus menuItem
	setTitle   func(string)
}

// New creates a Tray showing the idle session.
func New() *Tray {
	return &Tray{
		phase:   session.Idle,
		actions: session.ActionsFor(session.Idle),
	}
}

// OnAction sets the callback run when a session button is clicked.
func (t *Tray) OnAction(fn func(session.Action)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAction = fn
}

// OnOpenUI sets the callback run when "Open UI..." is clicked.
func (t *Tray) OnOpenUI(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenUI = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray event loop.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Hands off")
	systray.SetTooltip("Don't touch your face")

	status := systray.AddMenuItem("", "Session status")
	status.Disable()
	systray.AddSeparator()

	trainA := systray.AddMenuItem("Train 1", "Record frames without touching your face")
	trainB := systray.AddMenuItem("Train 2", "Record frames while touching your face")
	run := systray.AddMenuItem("Run", "Start detection")
	stop := systray.AddMenuItem("Stop", "Stop detection")
	systray.AddSeparator()

	openUI := systray.AddMenuItem("Open UI...", "Open the web interface in a browser")
	systray.AddSeparator()

	quit := systray.AddMenuItem("Quit", "Quit handsoff")

	t.mu.Lock()
	t.menuStatus = status
	t.menuTrainA = trainA
	t.menuTrainB = trainB
	t.menuRun = run
	t.menuStop = stop
	t.setTitle = systray.SetTitle
	t.renderLocked()
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-trainA.ClickedCh:
				t.handleAction(session.ActionTrainA)
			case <-trainB.ClickedCh:
				t.handleAction(session.ActionTrainB)
			case <-run.ClickedCh:
				t.handleAction(session.ActionDetect)
			case <-stop.ClickedCh:
				t.handleAction(session.ActionStop)
			case <-openUI.ClickedCh:
				t.handleOpenUI()
			case <-quit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleAction forwards a click if the action is currently enabled.
func (t *Tray) handleAction(a session.Action) {
	t.mu.RLock()
	allowed := t.actions.Allows(a)
	callback := t.onAction
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if allowed && callback != nil {
		callback(a)
	}
}

func (t *Tray) handleOpenUI() {
	t.mu.RLock()
	callback := t.onOpenUI
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

func (t *Tray) OnPhase(p session.Phase, a session.Actions) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = p
	t.actions = a
	t.progress = 0
	if p != session.Detecting {
		t.touched = false
	}
	t.renderLocked()
}

func (t *Tray) OnProgress(_ classifier.Label, fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = fraction
	t.renderLocked()
}

func (t *Tray) OnTouched(touched bool, _ classifier.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.touched == touched {
		return
	}
	t.touched = touched
	t.renderLocked()
}

func (t *Tray) OnTraining(session.TrainingReport) {}

func (t *Tray) OnError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.menuStatus != nil {
		t.menuStatus.SetTitle("Error: " + err.Error())
	}
}

// Status returns the status line for the current state.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return statusText(t.phase, t.touched, t.progress)
}

// renderLocked pushes the state into the menu. t.mu must be held.
func (t *Tray) renderLocked() {
	setEnabled(t.menuTrainA, t.actions.TrainA)
	setEnabled(t.menuTrainB, t.actions.TrainB)
	setEnabled(t.menuRun, t.actions.Detect)
	setEnabled(t.menuStop, t.actions.Stop)

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(statusText(t.phase, t.touched, t.progress))
	}
	if t.setTitle != nil {
		if t.touched {
			t.setTitle("Hands off!")
		} else {
			t.setTitle("Hands off")
		}
	}
}

func setEnabled(item menuItem, enabled bool) {
	if item == nil {
		return
	}
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

func statusText(p session.Phase, touched bool, progress float64) string {
	switch p {
	case session.Idle:
		return "Step 1: keep your hands away, then Train 1"
	case session.TrainingA, session.TrainingB:
		return fmt.Sprintf("Training... %d%%", int(progress*100+0.5))
	case session.AwaitingB:
		return "Step 2: touch your face, then Train 2"
	case session.ReadyToDetect:
		return "Ready: press Run"
	case session.Detecting:
		if touched {
			return "Hands off!"
		}
		return "Watching"
	case session.Stopped:
		return "Stopped"
	}
	return p.String()
}
