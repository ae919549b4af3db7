package alert

import "sync"

// MockPlayer is a test Player. Playback never ends on its own; call Finish
// to emit the playback-finished event.
type MockPlayer struct {
	finisher
	err   error
	plays int
}

// NewMockPlayer creates a MockPlayer.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// SetError makes Play fail with err.
func (m *MockPlayer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Play records the call.
func (m *MockPlayer) Play() error {
	m.mu.Lock()
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if err := m.begin(); err != nil {
		return err
	}

	m.mu.Lock()
	m.plays++
	m.mu.Unlock()
	return nil
}

// Finish ends the current playback and emits the finished event.
func (m *MockPlayer) Finish() {
	m.finish()
}

// Plays returns how many playbacks were started.
func (m *MockPlayer) Plays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// Playing reports whether a playback is in flight.
func (m *MockPlayer) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// MockNotifier records notifications.
type MockNotifier struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// NewMockNotifier creates a MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SetError makes Notify fail with err.
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Notify records the message.
func (m *MockNotifier) Notify(title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Title: title, Body: body})
	return m.err
}

// Messages returns a copy of the recorded messages.
func (m *MockNotifier) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
