package poll

// Panel is the overlay currently shown. Exactly one panel element is visible
// at a time, or none.
type Panel int

const (
	PanelNone Panel = iota
	PanelAuth
	PanelSignup
	PanelLogin
	PanelOther
	PanelNotification
)

var panelElements = map[Panel]ElementID{
	PanelAuth:         ElemAuthSection,
	PanelSignup:       ElemSignupDialog,
	PanelLogin:        ElemLoginDialog,
	PanelOther:        ElemOtherDialog,
	PanelNotification: ElemNotificationDialog,
}

var panelOrder = []Panel{PanelAuth, PanelSignup, PanelLogin, PanelOther, PanelNotification}

func (p Panel) String() string {
	switch p {
	case PanelAuth:
		return "auth"
	case PanelSignup:
		return "signup"
	case PanelLogin:
		return "login"
	case PanelOther:
		return "other"
	case PanelNotification:
		return "notification"
	default:
		return "none"
	}
}

// Element returns the element backing the panel, or "" for PanelNone.
func (p Panel) Element() ElementID { return panelElements[p] }
