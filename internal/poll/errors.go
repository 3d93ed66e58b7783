package poll

import "errors"

var (
	ErrNoSelection        = errors.New("poll: no emotion selected")
	ErrEmptyCustomEmotion = errors.New("poll: custom emotion is empty")
	ErrRequestInFlight    = errors.New("poll: request already in flight")
	ErrRejected           = errors.New("poll: rejected by server")
	ErrInvalidEmotions    = errors.New("poll: emotions must be unique, non-empty and not \"Other\"")
	ErrIndexOutOfRange    = errors.New("poll: entry index out of range")
)

// User-facing alert texts.
const (
	alertSignupOK     = "Signup successful!"
	alertSignupFailed = "Signup failed: "
	alertSignupRetry  = "Signup failed. Please try again."
	alertLoginOK      = "Login successful!"
	alertLoginFailed  = "Login failed: "
	alertLoginRetry   = "Login failed. Please try again."
	alertLogoutRetry  = "Logout failed. Please try again."
	alertSelectOne    = "Please select at least one emotion."
	alertVoteRetry    = "Vote submission failed. Please try again."
)
