package poll

import "github.com/jask/emotionpoll/internal/api"

// ElementID names a piece of the widget the controller reads or changes.
type ElementID string

const (
	ElemAuthSection        ElementID = "auth-section"
	ElemSignupDialog       ElementID = "signup-dialog"
	ElemLoginDialog        ElementID = "login-dialog"
	ElemOtherDialog        ElementID = "other-dialog"
	ElemNotificationDialog ElementID = "notification-dialog"
	ElemPollSection        ElementID = "poll-section"
	ElemStatsSection       ElementID = "stats-section"

	ElemSignupEmail    ElementID = "signup-username"
	ElemSignupPassword ElementID = "signup-password"
	ElemLoginEmail     ElementID = "login-username"
	ElemLoginPassword  ElementID = "login-password"
	ElemOtherEmotion   ElementID = "other-emotion"
	ElemOtherHint      ElementID = "other-hint"
	ElemNotification   ElementID = "notification-text"

	ElemSignupButton ElementID = "signup-button"
	ElemLoginButton  ElementID = "login-button"
	ElemLogoutButton ElementID = "logout-button"
	ElemVoteButton   ElementID = "vote-button"
)

// View is what the controller needs from a screen. Implementations must not
// block and must not call back into the controller.
type View interface {
	Value(id ElementID) string
	SetValue(id ElementID, value string)
	SetVisible(id ElementID, visible bool)
	SetText(id ElementID, text string)
	SetEnabled(id ElementID, enabled bool)
	SetEntry(index int, e Entry)
	Alert(message string)
}

// Chart is a rendered statistics chart.
type Chart interface {
	Destroy()
}

// ChartRenderer draws statistics onto the stats section.
type ChartRenderer interface {
	Render(stats api.Stats) Chart
}

// SessionStore keeps the login across program runs.
type SessionStore interface {
	Save(email string) error
	Clear() error
}
