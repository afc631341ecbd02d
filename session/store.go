package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/miosa/splash-tui/kv"
)

// WelcomeMessage greets every fresh or empty conversation. It lives only in
// the client; the backend never sees it.
const WelcomeMessage = "Hello! I'm SPLASHBot, your macroeconomics assistant. How can I help you today?"

const welcomeID = "system-welcome"

// ErrBusy is returned when an operation is already running for the same
// target, e.g. a second send into a session with a reply still pending.
var ErrBusy = errors.New("operation already in progress")

// Store owns the session mapping and current pointer. All operations are
// safe for concurrent use; the mutex is released around gateway calls so a
// slow backend never blocks reads or the in-flight guards.
type Store struct {
	mu       sync.Mutex
	gw       Gateway
	kv       *kv.Store
	sessions map[string]*Session
	current  string
	topic    Topic

	loadingHistory bool
	fetching       map[string]bool
	sending        map[string]bool
	nextSeq        int64

	newID func() string
	now   func() time.Time
}

// NewStore builds a store over the gateway and restores any persisted state
// from the kv database. A nil kv store disables persistence.
func NewStore(gw Gateway, db *kv.Store) *Store {
	s := &Store{
		gw:       gw,
		kv:       db,
		sessions: make(map[string]*Session),
		topic:    DefaultTopic,
		fetching: make(map[string]bool),
		sending:  make(map[string]bool),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	s.restore()
	return s
}

// NewSession creates a fresh conversation, seeds the greeting and makes it
// current. Purely local; nothing is sent to the backend until the first
// message.
func (s *Store) NewSession() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.newSessionLocked()
	s.persistLocked()
	return copySession(sess)
}

func (s *Store) newSessionLocked() *Session {
	now := s.now()
	sess := &Session{
		ID:        s.newID(),
		Title:     newSessionTitle,
		Timestamp: now,
		Loaded:    true,
		Seq:       s.takeSeqLocked(),
		Messages: []Message{{
			ID:        welcomeID,
			Role:      RoleSystem,
			Content:   WelcomeMessage,
			Timestamp: now,
			State:     StateConfirmed,
		}},
	}
	s.sessions[sess.ID] = sess
	s.current = sess.ID
	return sess
}

// Select makes a session current, fetching its transcript first if it has
// not been loaded yet. The pointer only moves on success: a failed fetch
// leaves the previous session current. A second Select for a session whose
// fetch is already in flight is a no-op.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown session %s", id)
	}
	if sess.Loaded {
		s.current = id
		s.persistLocked()
		s.mu.Unlock()
		return nil
	}
	if s.fetching[id] {
		s.mu.Unlock()
		return nil
	}
	s.fetching[id] = true
	s.mu.Unlock()

	remote, err := s.gw.Messages(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fetching, id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", id, err)
	}
	sess, ok = s.sessions[id]
	if !ok {
		// Deleted while the fetch was in flight.
		return nil
	}
	sess.Messages = convertRemote(remote, s.now())
	sess.Loaded = true
	if needsTitle(sess.Title) {
		if first, ok := firstUserMessage(sess.Messages); ok {
			sess.Title = deriveTitle(first.Content)
		}
	}
	s.current = id
	s.persistLocked()
	return nil
}

func convertRemote(remote []RemoteMessage, now time.Time) []Message {
	if len(remote) == 0 {
		return []Message{{
			ID:        welcomeID,
			Role:      RoleSystem,
			Content:   WelcomeMessage,
			Timestamp: now,
			State:     StateConfirmed,
		}}
	}
	msgs := make([]Message, 0, len(remote))
	for _, r := range remote {
		m := Message{
			ID:         r.ID,
			Role:       parseRole(r.Role),
			Content:    r.Content,
			Timestamp:  r.Timestamp,
			References: r.References,
			State:      StateConfirmed,
		}
		if r.FileID != "" {
			m.File = FileRef(r.FileID)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func parseRole(s string) Role {
	switch Role(s) {
	case RoleAssistant:
		return RoleAssistant
	case RoleSystem:
		return RoleSystem
	default:
		return RoleUser
	}
}

func firstUserMessage(msgs []Message) (Message, bool) {
	for _, m := range msgs {
		if m.Role == RoleUser {
			return m, true
		}
	}
	return Message{}, false
}

// Send validates, appends the user message optimistically, uploads the
// attachment if any, posts the prompt and folds the assistant reply back in.
// On failure the user message stays in the transcript flagged failed.
// With no current session one is created implicitly.
func (s *Store) Send(content string, file *FileUpload) error {
	content = strings.TrimSpace(content)
	if content == "" && file == nil {
		return &ValidationError{Reason: "message is empty"}
	}
	if file != nil {
		if err := file.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if file != nil && !s.topic.AllowsUpload() {
		s.mu.Unlock()
		return &ValidationError{Reason: fmt.Sprintf("file upload is only available for %s", DefaultTopic)}
	}
	if s.current == "" {
		s.newSessionLocked()
	}
	sid := s.current
	if s.sending[sid] {
		s.mu.Unlock()
		return ErrBusy
	}
	s.sending[sid] = true
	sess := s.sessions[sid]

	msg := Message{
		ID:        fmt.Sprintf("user-%d", s.now().UnixMilli()),
		Role:      RoleUser,
		Content:   content,
		Timestamp: s.now(),
		State:     StatePending,
	}
	if file != nil {
		msg.File = &FileAttachment{
			Kind: AttachmentFull,
			Name: file.Name,
			Mime: file.Mime,
			Size: file.size(),
		}
	}
	if needsTitle(sess.Title) {
		sess.Title = deriveTitle(content)
	}
	sess.Messages = append(sess.Messages, msg)
	topic := s.topic
	msgID := msg.ID
	s.persistLocked()
	s.mu.Unlock()

	var fileID, fileURL string
	if file != nil {
		up, err := s.gw.Upload(*file)
		if err != nil {
			s.failSend(sid, msgID, "", "")
			return fmt.Errorf("upload %s: %w", file.Name, err)
		}
		fileID, fileURL = up.FileID, up.URL
	}

	res, err := s.gw.Send(sid, SendRequest{Prompt: content, FileID: fileID, Topic: string(topic)})
	if err != nil {
		s.failSend(sid, msgID, fileID, fileURL)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sending, sid)
	sess, ok := s.sessions[sid]
	if !ok {
		return nil
	}
	if m := findMessage(sess, msgID); m != nil {
		m.State = StateConfirmed
		if m.File != nil {
			m.File.ID = fileID
			m.File.URL = fileURL
		}
	}
	sess.Messages = append(sess.Messages, Message{
		ID:         fmt.Sprintf("assistant-%d", s.now().UnixMilli()),
		Role:       RoleAssistant,
		Content:    res.Content,
		Timestamp:  replyTime(res.CreatedAt, s.now()),
		References: res.References,
		State:      StateConfirmed,
	})
	sess.Timestamp = s.now()
	s.persistLocked()
	return nil
}

// failSend marks the optimistic message failed and releases the per-session
// send guard. The message is kept so the user can see what did not go out.
func (s *Store) failSend(sid, msgID, fileID, fileURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sending, sid)
	sess, ok := s.sessions[sid]
	if !ok {
		return
	}
	if m := findMessage(sess, msgID); m != nil {
		m.State = StateFailed
		if m.File != nil && fileID != "" {
			m.File.ID = fileID
			m.File.URL = fileURL
		}
	}
	s.persistLocked()
}

func findMessage(sess *Session, id string) *Message {
	for i := range sess.Messages {
		if sess.Messages[i].ID == id {
			return &sess.Messages[i]
		}
	}
	return nil
}

func replyTime(created, fallback time.Time) time.Time {
	if created.IsZero() {
		return fallback
	}
	return created
}

// Delete removes a session, server first. Local state only changes once the
// backend confirms. The gateway call is made even for an id this client has
// never seen (the server may hold sessions we have not listed yet); an
// unknown id is then a local no-op. Deleting the current session clears the
// pointer; no new session is created automatically.
func (s *Store) Delete(id string) error {
	if err := s.gw.Delete(id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil
	}
	delete(s.sessions, id)
	if s.current == id {
		s.current = ""
	}
	s.persistLocked()
	return nil
}

// ClearAll wipes every session, server first.
func (s *Store) ClearAll() error {
	if err := s.gw.ClearAll(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
	s.current = ""
	s.persistLocked()
	return nil
}

// LoadHistory refreshes session metadata from the backend. Remote wins for
// title and timestamp, but transcripts already fetched are kept, as are
// local-only sessions the backend has never seen (a fresh unsent chat).
// Concurrent calls collapse into one. When no session is current afterwards
// the most recent one is selected, or a new one created if there is none.
func (s *Store) LoadHistory() error {
	s.mu.Lock()
	if s.loadingHistory {
		s.mu.Unlock()
		return nil
	}
	s.loadingHistory = true
	s.mu.Unlock()

	entries, err := s.gw.History()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingHistory = false
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	for _, e := range entries {
		if sess, ok := s.sessions[e.ID]; ok {
			sess.Timestamp = e.Timestamp
			if e.Title != "" {
				sess.Title = e.Title
			}
			continue
		}
		title := e.Title
		if title == "" {
			title = placeholderTitle
		}
		s.sessions[e.ID] = &Session{ID: e.ID, Title: title, Timestamp: e.Timestamp, Seq: s.takeSeqLocked()}
	}
	if s.current == "" {
		if latest := s.latestLocked(); latest != "" {
			s.current = latest
		} else {
			s.newSessionLocked()
		}
	}
	s.persistLocked()
	return nil
}

// takeSeqLocked hands out the next insertion sequence number. Caller holds
// the mutex.
func (s *Store) takeSeqLocked() int64 {
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

func (s *Store) latestLocked() string {
	var best *Session
	for _, sess := range s.sessions {
		if best == nil || sess.Timestamp.After(best.Timestamp) ||
			(sess.Timestamp.Equal(best.Timestamp) && sess.Seq < best.Seq) {
			best = sess
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}

// Reset drops all local state, in memory and on disk. Used on logout; the
// backend is not touched.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
	s.current = ""
	s.topic = DefaultTopic
	s.persistLocked()
}

// Current returns a copy of the current session.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[s.current]
	if !ok {
		return Session{}, false
	}
	return copySession(sess), true
}

// History lists session metadata, most recent first. Ties keep insertion
// order so the listing is stable across calls.
func (s *Store) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		ordered = append(ordered, sess)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.After(ordered[j].Timestamp)
		}
		return ordered[i].Seq < ordered[j].Seq
	})
	out := make([]HistoryEntry, 0, len(ordered))
	for _, sess := range ordered {
		out = append(out, HistoryEntry{ID: sess.ID, Title: sess.Title, Timestamp: sess.Timestamp})
	}
	return out
}

// Topic returns the active chat topic.
func (s *Store) Topic() Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// SetTopic switches the active topic. Unknown names are rejected.
func (s *Store) SetTopic(name string) error {
	t, ok := ParseTopic(name)
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown topic %q", name)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = t
	s.persistLocked()
	return nil
}

// CanAttach reports whether the active topic accepts file uploads.
func (s *Store) CanAttach() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic.AllowsUpload()
}

func copySession(sess *Session) Session {
	out := *sess
	out.Messages = make([]Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return out
}

