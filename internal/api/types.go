package api

// Messages the backend uses to signal success. Anything else is a refusal and
// is shown to the user verbatim.
const (
	MsgSignupOK = "User registered successfully"
	MsgLoginOK  = "Logged in successfully"
	MsgLogoutOK = "Logged out successfully"
	MsgVoteOK   = "Vote submitted successfully"
)

// Credentials is the body of /signup and /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Message is the generic {message} answer.
type Message struct {
	Message string `json:"message"`
}

// VoteRequest is the body of /vote.
type VoteRequest struct {
	Emotions []string `json:"emotions"`
}

// VoteResult is the answer to /vote. Stats is nil when the backend omits it.
type VoteResult struct {
	Message string `json:"message"`
	Stats   Stats  `json:"stats,omitempty"`
}

type authStatus struct {
	LoggedIn bool `json:"loggedIn"`
}
