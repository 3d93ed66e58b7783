package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/emotionpoll/internal/api"
)

type fakeView struct {
	mu       sync.Mutex
	values   map[ElementID]string
	visible  map[ElementID]bool
	text     map[ElementID]string
	disabled map[ElementID]bool
	entries  []Entry
	alerts   []string
}

func newFakeView() *fakeView {
	return &fakeView{
		values:   map[ElementID]string{},
		visible:  map[ElementID]bool{},
		text:     map[ElementID]string{},
		disabled: map[ElementID]bool{},
	}
}

func (v *fakeView) Value(id ElementID) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values[id]
}

func (v *fakeView) SetValue(id ElementID, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[id] = value
}

func (v *fakeView) SetVisible(id ElementID, visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible[id] = visible
}

func (v *fakeView) SetText(id ElementID, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.text[id] = text
}

func (v *fakeView) SetEnabled(id ElementID, enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disabled[id] = !enabled
}

func (v *fakeView) SetEntry(index int, e Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for len(v.entries) <= index {
		v.entries = append(v.entries, Entry{})
	}
	v.entries[index] = e
}

func (v *fakeView) Alert(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, message)
}

func (v *fakeView) isVisible(id ElementID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible[id]
}

func (v *fakeView) isDisabled(id ElementID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.disabled[id]
}

func (v *fakeView) lastAlert() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.alerts) == 0 {
		return ""
	}
	return v.alerts[len(v.alerts)-1]
}

func (v *fakeView) allAlerts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.alerts...)
}

func (v *fakeView) entry(i int) Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.entries[i]
}

func (v *fakeView) visiblePanels() []ElementID {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []ElementID
	for _, p := range panelOrder {
		if v.visible[p.Element()] {
			out = append(out, p.Element())
		}
	}
	return out
}

type fakeClient struct {
	mu sync.Mutex

	loggedIn  bool
	signupMsg api.Message
	loginMsg  api.Message
	logoutMsg api.Message
	voteRes   api.VoteResult
	stats     api.Stats

	signupErr, loginErr, logoutErr, voteErr, statsErr, authErr error

	// voteGate, when set, blocks Vote until it is closed.
	voteGate chan struct{}
	voteSeen chan struct{}

	creds      []api.Credentials
	votes      [][]string
	statsCalls int
	calls      []string
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) CheckAuth(ctx context.Context) (bool, error) {
	f.record("check-auth")
	return f.loggedIn, f.authErr
}

func (f *fakeClient) Signup(ctx context.Context, creds api.Credentials) (api.Message, error) {
	f.record("signup")
	f.mu.Lock()
	f.creds = append(f.creds, creds)
	f.mu.Unlock()
	return f.signupMsg, f.signupErr
}

func (f *fakeClient) Login(ctx context.Context, creds api.Credentials) (api.Message, error) {
	f.record("login")
	f.mu.Lock()
	f.creds = append(f.creds, creds)
	f.mu.Unlock()
	return f.loginMsg, f.loginErr
}

func (f *fakeClient) Logout(ctx context.Context) (api.Message, error) {
	f.record("logout")
	return f.logoutMsg, f.logoutErr
}

func (f *fakeClient) Vote(ctx context.Context, emotions []string) (api.VoteResult, error) {
	f.record("vote")
	f.mu.Lock()
	f.votes = append(f.votes, append([]string(nil), emotions...))
	gate, seen := f.voteGate, f.voteSeen
	f.mu.Unlock()
	if seen != nil {
		close(seen)
	}
	if gate != nil {
		<-gate
	}
	return f.voteRes, f.voteErr
}

func (f *fakeClient) Stats(ctx context.Context) (api.Stats, error) {
	f.record("stats")
	f.mu.Lock()
	f.statsCalls++
	f.mu.Unlock()
	return f.stats, f.statsErr
}

func (f *fakeClient) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeChart struct {
	stats     api.Stats
	destroyed int
	owner     *fakeCharts
}

func (c *fakeChart) Destroy() {
	c.destroyed++
	c.owner.mu.Lock()
	c.owner.attached--
	c.owner.mu.Unlock()
}

type fakeCharts struct {
	mu       sync.Mutex
	rendered []*fakeChart
	attached int
}

func (f *fakeCharts) Render(stats api.Stats) Chart {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &fakeChart{stats: stats, owner: f}
	f.rendered = append(f.rendered, ch)
	f.attached++
	return ch
}

func (f *fakeCharts) last() *fakeChart {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rendered) == 0 {
		return nil
	}
	return f.rendered[len(f.rendered)-1]
}

type fakeSession struct {
	saved   []string
	cleared int
	err     error
}

func (s *fakeSession) Save(email string) error {
	s.saved = append(s.saved, email)
	return s.err
}

func (s *fakeSession) Clear() error {
	s.cleared++
	return s.err
}

var errNetwork = errors.New("connection refused")

type fixture struct {
	view    *fakeView
	client  *fakeClient
	charts  *fakeCharts
	session *fakeSession
	ctrl    *Controller
	slept   []time.Duration
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		view: newFakeView(),
		client: &fakeClient{
			signupMsg: api.Message{Message: api.MsgSignupOK},
			loginMsg:  api.Message{Message: api.MsgLoginOK},
			logoutMsg: api.Message{Message: api.MsgLogoutOK},
			voteRes:   api.VoteResult{Message: api.MsgVoteOK, Stats: api.Stats{{Label: "Happy", Votes: 1}}},
			stats:     api.Stats{{Label: "Happy", Votes: 1}},
		},
		charts:  &fakeCharts{},
		session: &fakeSession{},
	}
	base := []Option{
		WithSessionStore(f.session),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			f.slept = append(f.slept, d)
			return ctx.Err()
		}),
	}
	ctrl, err := New(f.view, f.client, f.charts, append(base, opts...)...)
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

// loggedIn runs a successful login and discards its alerts and chart.
func (f *fixture) loggedIn(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, f.ctrl.Login(context.Background()))
	f.view.mu.Lock()
	f.view.alerts = nil
	f.view.mu.Unlock()
	return f
}

func (f *fixture) otherIndex() int { return len(f.ctrl.Entries()) - 1 }

func (f *fixture) indexOf(t *testing.T, value string) int {
	t.Helper()
	for i, e := range f.ctrl.Entries() {
		if e.Value == value {
			return i
		}
	}
	t.Fatalf("entry %q not found", value)
	return -1
}
