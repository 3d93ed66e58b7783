// Package poll contains the voting widget controller and its contracts.
//
// Allowed here:
// - emotion entries, selection, panel and request state
// - the View, Client, ChartRenderer and SessionStore capabilities the controller needs
//
// Not allowed here:
// - terminal rendering or key handling (see internal/tui)
// - HTTP details (see internal/api)
package poll
