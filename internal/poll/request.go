package poll

// Operation is a network action the user can trigger.
type Operation string

const (
	OpSignup Operation = "signup"
	OpLogin  Operation = "login"
	OpLogout Operation = "logout"
	OpVote   Operation = "vote"
)

// RequestState tracks one operation's round trip.
type RequestState int

const (
	RequestIdle RequestState = iota
	RequestInFlight
	RequestDone
)

func (s RequestState) String() string {
	switch s {
	case RequestInFlight:
		return "in-flight"
	case RequestDone:
		return "done"
	default:
		return "idle"
	}
}

var opButtons = map[Operation]ElementID{
	OpSignup: ElemSignupButton,
	OpLogin:  ElemLoginButton,
	OpLogout: ElemLogoutButton,
	OpVote:   ElemVoteButton,
}
