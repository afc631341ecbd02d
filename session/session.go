// Package session holds the conversation state machine: the mapping of
// persisted chat threads, the current-session pointer, optimistic message
// delivery, file attachment validation and the topic gate. It talks to the
// backend only through the Gateway interface and persists itself as a single
// JSON document in the local kv database.
package session

import (
	"fmt"
	"strings"
	"time"
)

// Role of a message author. System is reserved for the synthetic greeting
// and is never sent to the backend.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DeliveryState tracks an optimistic message through its round trip.
type DeliveryState string

const (
	StatePending   DeliveryState = "pending"
	StateConfirmed DeliveryState = "confirmed"
	StateFailed    DeliveryState = "failed"
)

// AttachmentKind discriminates the two shapes an attachment arrives in.
type AttachmentKind string

const (
	// AttachmentRef is reconstructed from the server's file_id only.
	AttachmentRef AttachmentKind = "ref"
	// AttachmentFull came from a local upload and carries file metadata.
	AttachmentFull AttachmentKind = "full"
)

// FileAttachment is a tagged union: Kind says which fields are meaningful.
// A ref carries only ID; a full attachment has everything.
type FileAttachment struct {
	Kind AttachmentKind `json:"kind"`
	ID   string         `json:"id"`
	Name string         `json:"name,omitempty"`
	Mime string         `json:"mime,omitempty"`
	Size int64          `json:"size,omitempty"`
	URL  string         `json:"url,omitempty"`
}

// FileRef builds an attachment known only by its server id.
func FileRef(id string) *FileAttachment {
	return &FileAttachment{Kind: AttachmentRef, ID: id}
}

// Message is one entry in a session transcript. Transcripts are append-only;
// only State (and the attachment's server id) mutate after append.
type Message struct {
	ID         string          `json:"id"`
	Role       Role            `json:"role"`
	Content    string          `json:"content"`
	Timestamp  time.Time       `json:"timestamp"`
	File       *FileAttachment `json:"file,omitempty"`
	References []string        `json:"references,omitempty"`
	State      DeliveryState   `json:"state"`
}

// Session is one conversation thread. Loaded is false until the full
// transcript has been fetched; history listing only yields metadata. Seq is
// the store's insertion counter and breaks timestamp ties in listings.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages,omitempty"`
	Loaded    bool      `json:"loaded"`
	Seq       int64     `json:"seq"`
}

// MaxFileSize is the largest attachment accepted, in bytes.
const MaxFileSize = 10 * 1024 * 1024

// FileUpload is an outgoing attachment, validated before any network call.
type FileUpload struct {
	Name string
	Mime string
	Size int64
	Data []byte
}

func (f *FileUpload) size() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

// Validate rejects anything but a PDF or image within the size cap.
func (f *FileUpload) Validate() error {
	ok := f.Mime == "application/pdf" || strings.HasPrefix(f.Mime, "image/")
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unsupported file type %q: only PDF and images are accepted", f.Mime)}
	}
	if f.size() > MaxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("file too large (%d bytes, limit %d)", f.size(), int64(MaxFileSize))}
	}
	return nil
}

// ValidationError is a client-side rejection raised before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// HistoryEntry is session metadata, as listed by the backend and as exposed
// by the store's read model.
type HistoryEntry struct {
	ID        string
	Title     string
	Timestamp time.Time
}

// RemoteMessage is one transcript entry as fetched from the backend.
type RemoteMessage struct {
	ID         string
	Role       string
	Content    string
	Timestamp  time.Time
	FileID     string
	References []string
}

// SendRequest is an outgoing prompt.
type SendRequest struct {
	Prompt string
	FileID string
	Topic  string
}

// SendResult is the assistant's reply.
type SendResult struct {
	Content    string
	CreatedAt  time.Time
	References []string
}

// UploadResult identifies a stored file.
type UploadResult struct {
	FileID string
	URL    string
}

// Gateway is the backend surface the store needs. The HTTP client satisfies
// it through a thin adapter; tests substitute fakes.
type Gateway interface {
	History() ([]HistoryEntry, error)
	Messages(sessionID string) ([]RemoteMessage, error)
	Send(sessionID string, req SendRequest) (*SendResult, error)
	Upload(f FileUpload) (*UploadResult, error)
	Delete(sessionID string) error
	ClearAll() error
}
