package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/emotionpoll/internal/chart"
	"github.com/jask/emotionpoll/internal/config"
	"github.com/jask/emotionpoll/internal/poll"
)

// App is the bubbletea model. It translates keys into controller calls and
// renders the Screen the controller paints.
type App struct {
	ctx    context.Context
	ctrl   *poll.Controller
	screen *Screen

	inputs map[poll.ElementID]textinput.Model
	focus  poll.ElementID
	cursor int
	status string
	width  int
	height int
}

// panel -> input fields, in tab order
var panelInputs = map[poll.Panel][]poll.ElementID{
	poll.PanelSignup: {poll.ElemSignupEmail, poll.ElemSignupPassword},
	poll.PanelLogin:  {poll.ElemLoginEmail, poll.ElemLoginPassword},
	poll.PanelOther:  {poll.ElemOtherEmotion},
}

// New builds the app and its controller. Extra options are applied after the
// ones derived from cfg.
func New(ctx context.Context, cfg config.Config, client poll.Client, extra ...poll.Option) (*App, error) {
	screen := NewScreen()
	renderer := chart.NewRenderer(screen, cfg.UI.ChartWidth, cfg.UI.ChartHeight,
		chart.WithBackground(cfg.UI.ChartBackground))

	opts := []poll.Option{
		poll.WithEmotions(cfg.Poll.Emotions),
		poll.WithResultDelay(cfg.Poll.ResultDelay),
	}
	ctrl, err := poll.New(screen, client, chartRenderer{renderer}, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}

	a := &App{
		ctx:    ctx,
		ctrl:   ctrl,
		screen: screen,
		inputs: map[poll.ElementID]textinput.Model{
			poll.ElemSignupEmail:    newInput("email", false),
			poll.ElemSignupPassword: newInput("password", true),
			poll.ElemLoginEmail:     newInput("email", false),
			poll.ElemLoginPassword:  newInput("password", true),
			poll.ElemOtherEmotion:   newInput("how do you feel?", false),
		},
	}
	a.syncInputs()
	return a, nil
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = 32
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// Controller exposes the underlying controller.
func (a *App) Controller() *poll.Controller { return a.ctrl }

// Screen exposes the painted state.
func (a *App) Screen() *Screen { return a.screen }

func (a *App) Init() tea.Cmd {
	return a.run("restore", a.ctrl.Restore)
}

// run executes a controller operation off the bubbletea loop.
func (a *App) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case opDoneMsg:
		a.status = statusFor(m)
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if _, ok := a.screen.CurrentAlert(); ok {
			switch m.String() {
			case "enter", "esc", " ":
				a.screen.DismissAlert()
			}
			return a, nil
		}
		switch p := a.ctrl.Active(); p {
		case poll.PanelSignup, poll.PanelLogin:
			cmd = a.handleFormKey(p, m)
		case poll.PanelOther:
			cmd = a.handleOtherKey(m)
		case poll.PanelNotification:
			switch m.String() {
			case "enter", "esc", " ":
				a.ctrl.HideNotification()
			}
		case poll.PanelAuth:
			cmd = a.handleAuthKey(m)
		default:
			cmd = a.handlePollKey(m)
		}
	}
	a.syncInputs()
	a.refocus()
	return a, cmd
}

func (a *App) handleAuthKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "q":
		return tea.Quit
	case "s":
		a.status = ""
		a.ctrl.ShowSignup()
	case "l":
		a.status = ""
		a.ctrl.ShowLogin()
	}
	return nil
}

func (a *App) handleFormKey(p poll.Panel, m tea.KeyMsg) tea.Cmd {
	fields := panelInputs[p]
	switch m.String() {
	case "esc":
		a.ctrl.CloseAuthDialog()
		return nil
	case "tab", "down":
		a.moveFocus(fields, 1)
		return nil
	case "shift+tab", "up":
		a.moveFocus(fields, -1)
		return nil
	case "enter":
		if a.focus != fields[len(fields)-1] {
			a.moveFocus(fields, 1)
			return nil
		}
		if p == poll.PanelSignup {
			return a.submit(poll.OpSignup, "signing up...", a.ctrl.Signup)
		}
		return a.submit(poll.OpLogin, "logging in...", a.ctrl.Login)
	}
	a.typeInto(m)
	return nil
}

func (a *App) handleOtherKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "esc":
		a.ctrl.CloseOther()
		return nil
	case "enter":
		if err := a.ctrl.SubmitOther(); errors.Is(err, poll.ErrEmptyCustomEmotion) {
			a.status = "type an emotion first"
		} else {
			a.status = ""
		}
		return nil
	}
	a.typeInto(m)
	a.ctrl.CustomHint()
	return nil
}

func (a *App) handlePollKey(m tea.KeyMsg) tea.Cmd {
	entries := a.screen.Entries()
	switch m.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(entries)-1 {
			a.cursor++
		}
	case " ", "x":
		a.status = ""
		_ = a.ctrl.Toggle(a.cursor)
	case "enter", "v":
		return a.submit(poll.OpVote, "submitting vote...", a.ctrl.SubmitVote)
	case "r":
		return a.run("refresh", a.ctrl.RefreshStats)
	case "o":
		return a.submit(poll.OpLogout, "logging out...", a.ctrl.Logout)
	}
	return nil
}

// submit starts a network operation unless its action is disabled.
func (a *App) submit(op poll.Operation, busy string, fn func(context.Context) error) tea.Cmd {
	if !a.screen.Enabled(buttonFor(op)) {
		a.status = string(op) + " already in progress"
		return nil
	}
	a.status = busy
	return a.run(string(op), fn)
}

func buttonFor(op poll.Operation) poll.ElementID {
	switch op {
	case poll.OpSignup:
		return poll.ElemSignupButton
	case poll.OpLogin:
		return poll.ElemLoginButton
	case poll.OpLogout:
		return poll.ElemLogoutButton
	default:
		return poll.ElemVoteButton
	}
}

func (a *App) typeInto(m tea.KeyMsg) {
	in, ok := a.inputs[a.focus]
	if !ok {
		return
	}
	// Blink messages are never routed back to the inputs, so the
	// returned command is dropped.
	in, _ = in.Update(m)
	a.inputs[a.focus] = in
	a.screen.SetValue(a.focus, in.Value())
}

func (a *App) moveFocus(fields []poll.ElementID, step int) {
	idx := 0
	for i, id := range fields {
		if id == a.focus {
			idx = i
		}
	}
	idx = (idx + step + len(fields)) % len(fields)
	a.setFocus(fields[idx])
}

func (a *App) setFocus(id poll.ElementID) {
	a.focus = id
	for key, in := range a.inputs {
		if key == id {
			in.Focus()
		} else {
			in.Blur()
		}
		a.inputs[key] = in
	}
}

// refocus keeps keyboard focus inside the active panel's fields.
func (a *App) refocus() {
	fields := panelInputs[a.ctrl.Active()]
	if len(fields) == 0 {
		if a.focus != "" {
			a.setFocus("")
		}
		return
	}
	for _, id := range fields {
		if id == a.focus {
			return
		}
	}
	a.setFocus(fields[0])
}

// syncInputs copies values the controller wrote (prefills, cleared
// passwords) into the text inputs.
func (a *App) syncInputs() {
	for id, in := range a.inputs {
		if v := a.screen.Value(id); v != in.Value() {
			in.SetValue(v)
			a.inputs[id] = in
		}
	}
}

func statusFor(m opDoneMsg) string {
	switch {
	case m.err == nil:
		return ""
	case errors.Is(m.err, poll.ErrRequestInFlight):
		return m.op + " already in progress"
	default:
		// Everything else was already surfaced by an alert or is
		// deliberately silent (stats refresh, session restore).
		return ""
	}
}

type opDoneMsg struct {
	op  string
	err error
}

// styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedItem = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FD17F")).Bold(true)
	disabledItem = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	statusStyle  = lipgloss.NewStyle().Italic(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0B050"))
	modalStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder(), true).
			BorderForeground(lipgloss.Color("#FF4D4F")).
			Padding(0, 2)
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("How are you feeling?"))
	b.WriteString("\n")

	if a.screen.Visible(poll.ElemAuthSection) {
		b.WriteString("\n" + a.renderAuth())
	}
	if a.screen.Visible(poll.ElemPollSection) {
		b.WriteString("\n" + a.renderPoll())
	}
	if a.screen.Visible(poll.ElemStatsSection) {
		b.WriteString("\n" + a.renderStats())
	}
	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}

	body := b.String()
	if panel := a.renderPanel(); panel != "" {
		body = center(body, modalStyle.Render(panel), a.width, a.height)
	}
	if msg, ok := a.screen.CurrentAlert(); ok {
		body = center(body, alertStyle.Render(msg+"\n\n"+helpStyle.Render("[enter] OK")), a.width, a.height)
	}
	return body
}

func (a *App) renderAuth() string {
	return "Sign up or log in to vote.\n" +
		a.button(poll.ElemSignupButton, "[s] Signup") + "  " +
		a.button(poll.ElemLoginButton, "[l] Login") + "  " +
		helpStyle.Render("[q] Quit") + "\n"
}

func (a *App) renderPoll() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Pick your emotions") + "\n")
	for i, e := range a.screen.Entries() {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		box := "[ ]"
		label := e.Label
		if e.Selected {
			box = "[x]"
			label = selectedItem.Render(label)
		}
		fmt.Fprintf(&b, "%s %s %s\n", marker, box, label)
	}
	b.WriteString(helpStyle.Render("[space] Toggle  ") +
		a.button(poll.ElemVoteButton, "[enter] Vote") +
		helpStyle.Render("  [r] Refresh  ") +
		a.button(poll.ElemLogoutButton, "[o] Logout") +
		helpStyle.Render("  [q] Quit"))
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderStats() string {
	out := sectionStyle.Render("Statistics") + "\n"
	charts := a.screen.Charts()
	if len(charts) == 0 {
		return out + helpStyle.Render("loading...") + "\n"
	}
	for _, c := range charts {
		out += c.View() + "\n"
	}
	return out
}

func (a *App) renderPanel() string {
	switch a.ctrl.Active() {
	case poll.PanelSignup:
		return titleStyle.Render("Sign up") + "\n\n" + a.renderForm(panelInputs[poll.PanelSignup]) +
			"\n" + a.button(poll.ElemSignupButton, "[enter] Sign up") + helpStyle.Render("  [tab] Next field  [esc] Close")
	case poll.PanelLogin:
		return titleStyle.Render("Log in") + "\n\n" + a.renderForm(panelInputs[poll.PanelLogin]) +
			"\n" + a.button(poll.ElemLoginButton, "[enter] Log in") + helpStyle.Render("  [tab] Next field  [esc] Close")
	case poll.PanelOther:
		out := titleStyle.Render("Other emotion") + "\n\n" + a.inputs[poll.ElemOtherEmotion].View() + "\n"
		if hint := a.screen.Text(poll.ElemOtherHint); hint != "" {
			out += hintStyle.Render(hint) + "\n"
		}
		return out + "\n" + helpStyle.Render("[enter] Add  [esc] Cancel")
	case poll.PanelNotification:
		return titleStyle.Render("Thanks for voting") + "\n\n" + a.screen.Text(poll.ElemNotification) +
			"\n\n" + helpStyle.Render("[enter] Close")
	default:
		return ""
	}
}

func (a *App) renderForm(fields []poll.ElementID) string {
	var b strings.Builder
	for _, id := range fields {
		b.WriteString(a.inputs[id].View() + "\n")
	}
	return b.String()
}

func (a *App) button(id poll.ElementID, label string) string {
	if !a.screen.Enabled(id) {
		return disabledItem.Render(label)
	}
	return label
}
