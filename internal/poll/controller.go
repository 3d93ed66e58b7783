package poll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/jask/emotionpoll/internal/api"
)

// Client is the backend the controller talks to.
type Client interface {
	CheckAuth(ctx context.Context) (bool, error)
	Signup(ctx context.Context, creds api.Credentials) (api.Message, error)
	Login(ctx context.Context, creds api.Credentials) (api.Message, error)
	Logout(ctx context.Context) (api.Message, error)
	Vote(ctx context.Context, emotions []string) (api.VoteResult, error)
	Stats(ctx context.Context) (api.Stats, error)
}

// Controller owns the voting widget: the emotion entries and their selection,
// the active panel, the state of each network operation and the chart.
//
// The mutex is never held across a Client call or the result delay, so a
// long request does not freeze local interactions.
type Controller struct {
	view    View
	client  Client
	charts  ChartRenderer
	logger  *slog.Logger
	session SessionStore

	emotions   []string
	loginEmail string
	delay      time.Duration
	sleep      func(context.Context, time.Duration) error

	mu       sync.Mutex
	entries  []Entry
	otherIdx int
	active   Panel
	loggedIn bool
	requests map[Operation]RequestState
	chart    Chart
}

// Option configures a Controller.
type Option func(*Controller)

// WithEmotions replaces DefaultEmotions. The Other entry is always appended.
func WithEmotions(emotions []string) Option {
	return func(c *Controller) { c.emotions = emotions }
}

// WithResultDelay sets the pause between a vote answer and showing it.
func WithResultDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithSessionStore persists successful logins.
func WithSessionStore(s SessionStore) Option {
	return func(c *Controller) { c.session = s }
}

// WithLoginEmail prefills the login form.
func WithLoginEmail(email string) Option {
	return func(c *Controller) { c.loginEmail = email }
}

// WithSleep replaces the function used to wait out the result delay.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Controller) { c.sleep = fn }
}

// New builds the controller and paints the initial state: the emotion list,
// the auth panel, and hidden poll and stats sections.
func New(view View, client Client, charts ChartRenderer, opts ...Option) (*Controller, error) {
	c := &Controller{
		view:     view,
		client:   client,
		charts:   charts,
		logger:   slog.New(slog.DiscardHandler),
		emotions: DefaultEmotions,
		delay:    time.Second,
		sleep:    sleepContext,
		requests: map[Operation]RequestState{},
	}
	for _, opt := range opts {
		opt(c)
	}
	entries, err := buildEntries(c.emotions)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	c.otherIdx = len(entries) - 1

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		c.view.SetEntry(i, e)
	}
	for _, btn := range opButtons {
		c.view.SetEnabled(btn, true)
	}
	if c.loginEmail != "" {
		c.view.SetValue(ElemLoginEmail, c.loginEmail)
	}
	c.view.SetVisible(ElemPollSection, false)
	c.view.SetVisible(ElemStatsSection, false)
	c.setPanelLocked(PanelAuth)
	return c, nil
}

// Active returns the panel currently shown.
func (c *Controller) Active() Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// LoggedIn reports whether a login succeeded in this session.
func (c *Controller) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

// Entries returns a copy of the emotion list.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Selected returns the values of the selected entries in list order.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

// State returns the request state of op.
func (c *Controller) State(op Operation) RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[op]
}

func (c *Controller) selectedLocked() []string {
	var out []string
	for _, e := range c.entries {
		if e.Selected {
			out = append(out, e.Value)
		}
	}
	return out
}

// setPanelLocked is the only place panels change visibility.
func (c *Controller) setPanelLocked(p Panel) {
	c.active = p
	for _, q := range panelOrder {
		c.view.SetVisible(q.Element(), q == p)
	}
}

func (c *Controller) basePanelLocked() Panel {
	if c.loggedIn {
		return PanelNone
	}
	return PanelAuth
}

// Toggle flips the selection of entry index. On the Other entry it opens the
// custom-emotion panel instead.
func (c *Controller) Toggle(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.entries) {
		return ErrIndexOutOfRange
	}
	e := &c.entries[index]
	if e.IsOther() {
		c.openOtherLocked()
		return nil
	}
	e.Selected = !e.Selected
	c.view.SetEntry(index, *e)
	return nil
}

// ClearSelections deselects every entry.
func (c *Controller) ClearSelections() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelectionsLocked()
}

func (c *Controller) clearSelectionsLocked() {
	for i := range c.entries {
		if !c.entries[i].Selected {
			continue
		}
		c.entries[i].Selected = false
		c.view.SetEntry(i, c.entries[i])
	}
}

// OpenOther shows the custom-emotion panel.
func (c *Controller) OpenOther() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openOtherLocked()
}

func (c *Controller) openOtherLocked() {
	c.view.SetText(ElemOtherHint, "")
	c.setPanelLocked(PanelOther)
}

// CloseOther hides the custom-emotion panel.
func (c *Controller) CloseOther() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == PanelOther {
		c.setPanelLocked(c.basePanelLocked())
	}
}

// SubmitOther turns the Other entry into the custom emotion typed in the
// panel and selects it. Blank input changes nothing.
func (c *Controller) SubmitOther() error {
	text := strings.TrimSpace(c.view.Value(ElemOtherEmotion))
	if text == "" {
		return ErrEmptyCustomEmotion
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &c.entries[c.otherIdx]
	e.Label = customLabel(text)
	e.Value = text
	e.Selected = true
	c.view.SetEntry(c.otherIdx, *e)
	c.view.SetText(ElemOtherHint, "")
	if c.active == PanelOther {
		c.setPanelLocked(c.basePanelLocked())
	}
	return nil
}

// CustomHint warns when the typed custom emotion is one edit away from an
// emotion already in the list.
func (c *Controller) CustomHint() {
	text := strings.ToLower(strings.TrimSpace(c.view.Value(ElemOtherEmotion)))
	c.mu.Lock()
	defer c.mu.Unlock()
	hint := ""
	if text != "" {
		for i, e := range c.entries {
			if i == c.otherIdx {
				continue
			}
			if levenshtein.ComputeDistance(text, strings.ToLower(e.Value)) <= 1 {
				hint = fmt.Sprintf("%s is already in the list", e.Label)
				break
			}
		}
	}
	c.view.SetText(ElemOtherHint, hint)
}

// ShowSignup replaces the auth panel with the signup form.
func (c *Controller) ShowSignup() {
	c.showAuthDialog(PanelSignup)
}

// ShowLogin replaces the auth panel with the login form.
func (c *Controller) ShowLogin() {
	c.showAuthDialog(PanelLogin)
}

func (c *Controller) showAuthDialog(p Panel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return
	}
	c.setPanelLocked(p)
}

// CloseAuthDialog hides the signup and login forms and restores the auth
// panel.
func (c *Controller) CloseAuthDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == PanelSignup || c.active == PanelLogin {
		c.setPanelLocked(c.basePanelLocked())
	}
}

// HideNotification closes the notification panel.
func (c *Controller) HideNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == PanelNotification {
		c.setPanelLocked(c.basePanelLocked())
	}
}

// begin marks op in flight and disables its action. It returns false when op
// is already in flight.
func (c *Controller) begin(op Operation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked(op)
}

func (c *Controller) beginLocked(op Operation) bool {
	if c.requests[op] == RequestInFlight {
		return false
	}
	c.requests[op] = RequestInFlight
	c.view.SetEnabled(opButtons[op], false)
	return true
}

func (c *Controller) finish(op Operation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[op] = RequestDone
	c.view.SetEnabled(opButtons[op], true)
}

func (c *Controller) credentials(email, password ElementID) api.Credentials {
	return api.Credentials{Email: c.view.Value(email), Password: c.view.Value(password)}
}

// Signup registers the account typed in the signup form. On success the login
// form is shown with the email filled in.
func (c *Controller) Signup(ctx context.Context) error {
	if !c.begin(OpSignup) {
		return ErrRequestInFlight
	}
	defer c.finish(OpSignup)

	creds := c.credentials(ElemSignupEmail, ElemSignupPassword)
	c.logger.Info("signing up", "email", creds.Email)
	msg, err := c.client.Signup(ctx, creds)
	if err != nil {
		c.logger.Error("signup failed", "op", OpSignup, "err", err)
		c.view.Alert(alertSignupRetry)
		return fmt.Errorf("signup: %w", err)
	}
	if msg.Message != api.MsgSignupOK {
		c.view.Alert(alertSignupFailed + msg.Message)
		return fmt.Errorf("signup: %w: %s", ErrRejected, msg.Message)
	}
	c.view.Alert(alertSignupOK)
	c.CloseAuthDialog()
	c.view.SetValue(ElemSignupPassword, "")
	c.view.SetValue(ElemLoginEmail, creds.Email)
	c.ShowLogin()
	return nil
}

// Login opens a session with the credentials typed in the login form. On
// success the auth panel goes away for good, the poll and stats sections
// appear and the stats are refreshed.
func (c *Controller) Login(ctx context.Context) error {
	if !c.begin(OpLogin) {
		return ErrRequestInFlight
	}
	defer c.finish(OpLogin)

	creds := c.credentials(ElemLoginEmail, ElemLoginPassword)
	c.logger.Info("logging in", "email", creds.Email)
	msg, err := c.client.Login(ctx, creds)
	if err != nil {
		c.logger.Error("login failed", "op", OpLogin, "err", err)
		c.view.Alert(alertLoginRetry)
		return fmt.Errorf("login: %w", err)
	}
	if msg.Message != api.MsgLoginOK {
		c.view.Alert(alertLoginFailed + msg.Message)
		return fmt.Errorf("login: %w: %s", ErrRejected, msg.Message)
	}
	c.view.Alert(alertLoginOK)
	c.view.SetValue(ElemLoginPassword, "")
	c.enterSession()
	if c.session != nil {
		if err := c.session.Save(creds.Email); err != nil {
			c.logger.Warn("save session", "err", err)
		}
	}
	_ = c.RefreshStats(ctx)
	return nil
}

// Restore resumes a session the backend still considers logged in.
func (c *Controller) Restore(ctx context.Context) error {
	ok, err := c.client.CheckAuth(ctx)
	if err != nil {
		c.logger.Warn("check auth", "err", err)
		return fmt.Errorf("restore: %w", err)
	}
	if !ok {
		c.logger.Debug("no live session")
		return nil
	}
	c.logger.Info("session restored")
	c.enterSession()
	_ = c.RefreshStats(ctx)
	return nil
}

// Logout ends the session and brings back the auth panel.
func (c *Controller) Logout(ctx context.Context) error {
	if !c.begin(OpLogout) {
		return ErrRequestInFlight
	}
	defer c.finish(OpLogout)

	msg, err := c.client.Logout(ctx)
	if err != nil {
		c.logger.Error("logout failed", "op", OpLogout, "err", err)
		c.view.Alert(alertLogoutRetry)
		return fmt.Errorf("logout: %w", err)
	}
	if msg.Message != api.MsgLogoutOK {
		c.logger.Warn("unexpected logout answer", "message", msg.Message)
	}
	c.leaveSession()
	if c.session != nil {
		if err := c.session.Clear(); err != nil {
			c.logger.Warn("clear session", "err", err)
		}
	}
	return nil
}

func (c *Controller) enterSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedIn = true
	c.setPanelLocked(PanelNone)
	c.view.SetVisible(ElemPollSection, true)
	c.view.SetVisible(ElemStatsSection, true)
}

func (c *Controller) leaveSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedIn = false
	c.clearSelectionsLocked()
	c.destroyChartLocked()
	c.view.SetVisible(ElemPollSection, false)
	c.view.SetVisible(ElemStatsSection, false)
	c.setPanelLocked(PanelAuth)
}

// SubmitVote sends the selected emotions. After the answer arrives and the
// result delay passes, the server message is shown, the selection is cleared,
// the stats are refreshed and the returned stats are shown in the
// notification panel. A transport failure keeps the selection.
func (c *Controller) SubmitVote(ctx context.Context) error {
	c.mu.Lock()
	if c.requests[OpVote] == RequestInFlight {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	emotions := c.selectedLocked()
	if len(emotions) == 0 {
		c.view.Alert(alertSelectOne)
		c.mu.Unlock()
		return ErrNoSelection
	}
	c.beginLocked(OpVote)
	c.mu.Unlock()
	defer c.finish(OpVote)

	c.logger.Info("submitting vote", "emotions", emotions)
	res, err := c.client.Vote(ctx, emotions)
	if err != nil {
		c.logger.Error("vote failed", "op", OpVote, "err", err)
		c.view.Alert(alertVoteRetry)
		return fmt.Errorf("vote: %w", err)
	}
	if err := c.sleep(ctx, c.delay); err != nil {
		c.logger.Warn("vote result abandoned", "err", err)
		return fmt.Errorf("vote: %w", err)
	}
	// A logout while the vote was in flight owns the screen now.
	if !c.LoggedIn() {
		c.logger.Info("vote result dropped after logout", "message", res.Message)
		return nil
	}

	c.view.Alert(res.Message)
	c.ClearSelections()
	_ = c.RefreshStats(ctx)
	c.showNotification(res.Stats)
	return nil
}

func (c *Controller) showNotification(stats api.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetText(ElemNotification, FormatStats(stats))
	c.setPanelLocked(PanelNotification)
}

// RefreshStats fetches the statistics and redraws the chart. Failures are
// only logged; the chart keeps its previous data.
func (c *Controller) RefreshStats(ctx context.Context) error {
	stats, err := c.client.Stats(ctx)
	if err != nil {
		c.logger.Error("fetch stats failed", "err", err)
		return fmt.Errorf("refresh stats: %w", err)
	}
	c.logger.Debug("fetched stats", "labels", len(stats), "votes", stats.Total())
	c.UpdateChart(stats)
	return nil
}

// UpdateChart replaces the current chart with one drawn from stats.
func (c *Controller) UpdateChart(stats api.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyChartLocked()
	if c.charts != nil {
		c.chart = c.charts.Render(stats)
	}
}

func (c *Controller) destroyChartLocked() {
	if c.chart == nil {
		return
	}
	c.chart.Destroy()
	c.chart = nil
}

// FormatStats renders statistics for the notification panel.
func FormatStats(stats api.Stats) string {
	if stats == nil {
		return "No statistics returned."
	}
	if len(stats) == 0 {
		return "No votes yet."
	}
	lines := make([]string, 0, len(stats)+1)
	lines = append(lines, "Current results:")
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("%s: %d", s.Label, s.Votes))
	}
	return strings.Join(lines, "\n")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
