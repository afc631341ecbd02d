// Package msg defines all tea.Msg types dispatched within the SPLASH TUI.
// It has no upstream imports (client, session, model) to avoid import cycles.
package msg

// -- Auth --

// SignupResult from /signup.
type SignupResult struct {
	UserID string
	Err    error
}

// LoginResult from /login: backend login plus identity token exchange.
type LoginResult struct {
	UserID    string
	ExpiresIn int
	Err       error
}

// LogoutResult from /logout.
type LogoutResult struct {
	Err error
}

// -- Session store results --

// HistoryLoaded after the session listing was refreshed.
type HistoryLoaded struct {
	Count int
	Err   error
}

// SessionSelected after a session was made current (transcript fetched
// if needed).
type SessionSelected struct {
	ID  string
	Err error
}

// SendDone after a message round trip, success or failure.
type SendDone struct {
	Err error
}

// DeleteResult after /delete.
type DeleteResult struct {
	ID  string
	Err error
}

// ClearResult after /clear.
type ClearResult struct {
	Err error
}

// -- Attachments --

// FileStaged after /attach read and validated a local file. Carries the
// raw bytes so the app can hand them to the session store on the next send.
type FileStaged struct {
	Name string
	Mime string
	Size int64
	Data []byte
	Err  error
}

// -- UI events --

// TickMsg for periodic timer updates.
type TickMsg struct{}
