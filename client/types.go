package client

import "strconv"

// SignupRequest for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupResponse from POST /auth/signup.
type SignupResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
}

// LoginRequest for POST /auth/login.
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
}

// LoginResponse from POST /auth/login. Token is a custom token that must be
// exchanged with the identity provider before it can authenticate calls.
type LoginResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
}

// TokenExchangeRequest for the identity provider's signInWithCustomToken.
type TokenExchangeRequest struct {
	Token             string `json:"token"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// TokenExchangeResponse from the identity provider. ExpiresIn arrives as a
// decimal string of seconds.
type TokenExchangeResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// ExpiresInSeconds parses ExpiresIn, returning 0 when unparseable so the
// credential store can fall back to the token's own exp claim.
func (r *TokenExchangeResponse) ExpiresInSeconds() int {
	n, err := strconv.Atoi(r.ExpiresIn)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ChatRequest for POST /chat/{sessionID}. Prompt may be empty only when
// FileID is set.
type ChatRequest struct {
	Prompt      string `json:"prompt"`
	FileID      string `json:"file_id,omitempty"`
	ChatOptions string `json:"chat_options"`
}

// ChatResponse from POST /chat/{sessionID}.
type ChatResponse struct {
	Response   string   `json:"response"`
	CreatedAt  string   `json:"created_at"`
	References []string `json:"references"`
}

// HistoryItem from GET /history. Older backends reported the session id as
// "id", newer ones as "chat_session_id"; SessionID resolves either.
type HistoryItem struct {
	ID            string `json:"id"`
	ChatSessionID string `json:"chat_session_id"`
	Title         string `json:"title"`
	Timestamp     string `json:"timestamp"`
}

// SessionID returns the session identifier regardless of backend version.
func (h *HistoryItem) SessionID() string {
	if h.ChatSessionID != "" {
		return h.ChatSessionID
	}
	return h.ID
}

// MessageRecord from GET /{sessionID}/messages, in chronological order.
type MessageRecord struct {
	MessageID  string   `json:"message_id"`
	Role       string   `json:"role"`
	Content    string   `json:"content"`
	Timestamp  string   `json:"timestamp"`
	FileID     string   `json:"file_id,omitempty"`
	References []string `json:"references,omitempty"`
}

// UploadResponse from POST /upload.
type UploadResponse struct {
	FileID string `json:"file_id"`
	URL    string `json:"url"`
}

// StatusResponse from DELETE /history and DELETE /history/{id}.
type StatusResponse struct {
	Success bool `json:"success"`
}

// errorResponse is the backend's non-2xx body shape.
type errorResponse struct {
	Detail string `json:"detail"`
}

// identityError is the identity provider's non-2xx body shape.
type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
