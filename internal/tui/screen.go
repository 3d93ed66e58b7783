package tui

import (
	"sync"

	"github.com/jask/emotionpoll/internal/api"
	"github.com/jask/emotionpoll/internal/chart"
	"github.com/jask/emotionpoll/internal/poll"
)

// Screen is the widget state the controller writes and App renders. Writes
// come from both the bubbletea loop and command goroutines.
type Screen struct {
	mu       sync.Mutex
	values   map[poll.ElementID]string
	visible  map[poll.ElementID]bool
	text     map[poll.ElementID]string
	disabled map[poll.ElementID]bool
	entries  []poll.Entry
	alerts   []string
	charts   []*chart.Bar
}

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{
		values:   map[poll.ElementID]string{},
		visible:  map[poll.ElementID]bool{},
		text:     map[poll.ElementID]string{},
		disabled: map[poll.ElementID]bool{},
	}
}

func (s *Screen) Value(id poll.ElementID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[id]
}

func (s *Screen) SetValue(id poll.ElementID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = value
}

func (s *Screen) SetVisible(id poll.ElementID, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[id] = visible
}

func (s *Screen) SetText(id poll.ElementID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text[id] = text
}

func (s *Screen) SetEnabled(id poll.ElementID, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[id] = !enabled
}

func (s *Screen) SetEntry(index int, e poll.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.entries) <= index {
		s.entries = append(s.entries, poll.Entry{})
	}
	s.entries[index] = e
}

// Alert queues a blocking message.
func (s *Screen) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, message)
}

// Attach implements chart.Canvas.
func (s *Screen) Attach(b *chart.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts = append(s.charts, b)
}

// Detach implements chart.Canvas.
func (s *Screen) Detach(b *chart.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.charts {
		if c == b {
			s.charts = append(s.charts[:i], s.charts[i+1:]...)
			return
		}
	}
}

func (s *Screen) Visible(id poll.ElementID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[id]
}

func (s *Screen) Text(id poll.ElementID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text[id]
}

func (s *Screen) Enabled(id poll.ElementID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disabled[id]
}

func (s *Screen) Entries() []poll.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]poll.Entry(nil), s.entries...)
}

// Charts returns the attached charts, oldest first.
func (s *Screen) Charts() []*chart.Bar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*chart.Bar(nil), s.charts...)
}

// CurrentAlert returns the oldest undismissed alert.
func (s *Screen) CurrentAlert() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return "", false
	}
	return s.alerts[0], true
}

// DismissAlert drops the oldest alert.
func (s *Screen) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) > 0 {
		s.alerts = s.alerts[1:]
	}
}

// chartRenderer adapts chart.Renderer to poll.ChartRenderer.
type chartRenderer struct {
	r *chart.Renderer
}

func (c chartRenderer) Render(stats api.Stats) poll.Chart {
	return c.r.Render(stats)
}
