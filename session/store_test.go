package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/miosa/splash-tui/kv"
)

// fakeGateway records calls and delegates to per-method hooks; unset hooks
// succeed with zero values.
type fakeGateway struct {
	mu      sync.Mutex
	sends   []SendRequest
	uploads []FileUpload
	deletes []string
	clears  int

	historyFn  func() ([]HistoryEntry, error)
	messagesFn func(string) ([]RemoteMessage, error)
	sendFn     func(string, SendRequest) (*SendResult, error)
	uploadFn   func(FileUpload) (*UploadResult, error)
	deleteFn   func(string) error
	clearFn    func() error
}

func (g *fakeGateway) History() ([]HistoryEntry, error) {
	if g.historyFn != nil {
		return g.historyFn()
	}
	return nil, nil
}

func (g *fakeGateway) Messages(id string) ([]RemoteMessage, error) {
	if g.messagesFn != nil {
		return g.messagesFn(id)
	}
	return nil, nil
}

func (g *fakeGateway) Send(id string, req SendRequest) (*SendResult, error) {
	g.mu.Lock()
	g.sends = append(g.sends, req)
	g.mu.Unlock()
	if g.sendFn != nil {
		return g.sendFn(id, req)
	}
	return &SendResult{Content: "ok"}, nil
}

func (g *fakeGateway) Upload(f FileUpload) (*UploadResult, error) {
	g.mu.Lock()
	g.uploads = append(g.uploads, f)
	g.mu.Unlock()
	if g.uploadFn != nil {
		return g.uploadFn(f)
	}
	return &UploadResult{FileID: "file-1", URL: "/files/file-1"}, nil
}

func (g *fakeGateway) Delete(id string) error {
	g.mu.Lock()
	g.deletes = append(g.deletes, id)
	g.mu.Unlock()
	if g.deleteFn != nil {
		return g.deleteFn(id)
	}
	return nil
}

func (g *fakeGateway) ClearAll() error {
	g.mu.Lock()
	g.clears++
	g.mu.Unlock()
	if g.clearFn != nil {
		return g.clearFn()
	}
	return nil
}

func (g *fakeGateway) sendCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sends)
}

// newTestStore wires a store over the fake gateway with deterministic ids
// and a clock that advances one second per read.
func newTestStore(t *testing.T, gw *fakeGateway) *Store {
	t.Helper()
	s := NewStore(gw, nil)
	var ids, ticks int
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.newID = func() string {
		ids++
		return fmt.Sprintf("session-%d", ids)
	}
	s.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	return s
}

func TestNewSessionSeedsGreeting(t *testing.T) {
	s := newTestStore(t, &fakeGateway{})

	sess := s.NewSession()
	if sess.Title != "New Conversation" {
		t.Fatalf("title %q", sess.Title)
	}
	if len(sess.Messages) != 1 {
		t.Fatalf("expected exactly one greeting, got %d messages", len(sess.Messages))
	}
	greet := sess.Messages[0]
	if greet.ID != "system-welcome" || greet.Role != RoleSystem || greet.Content != WelcomeMessage {
		t.Fatalf("unexpected greeting: %+v", greet)
	}
	cur, ok := s.Current()
	if !ok || cur.ID != sess.ID {
		t.Fatalf("new session should be current")
	}
}

func TestSendConfirmsOptimisticMessage(t *testing.T) {
	gw := &fakeGateway{
		sendFn: func(id string, req SendRequest) (*SendResult, error) {
			return &SendResult{Content: "Inflation is driven by...", References: []string{"ref-1"}}, nil
		},
	}
	s := newTestStore(t, gw)
	s.NewSession()

	if err := s.Send("What drives inflation?", nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	cur, _ := s.Current()
	if len(cur.Messages) != 3 {
		t.Fatalf("expected greeting+user+assistant, got %d", len(cur.Messages))
	}
	user, reply := cur.Messages[1], cur.Messages[2]
	if !strings.HasPrefix(user.ID, "user-") || user.State != StateConfirmed {
		t.Fatalf("unexpected user message: %+v", user)
	}
	if reply.Role != RoleAssistant || reply.State != StateConfirmed || len(reply.References) != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if cur.Title != "What drives inflation?" {
		t.Fatalf("title %q", cur.Title)
	}
	if got := gw.sends[0].Topic; got != string(DefaultTopic) {
		t.Fatalf("topic sent %q", got)
	}
}

func TestSendFailureKeepsFlaggedMessage(t *testing.T) {
	gw := &fakeGateway{
		sendFn: func(string, SendRequest) (*SendResult, error) {
			return nil, errors.New("backend down")
		},
	}
	s := newTestStore(t, gw)
	s.NewSession()

	if err := s.Send("hello", nil); err == nil {
		t.Fatalf("expected error")
	}

	cur, _ := s.Current()
	if len(cur.Messages) != 2 {
		t.Fatalf("user message must survive the failure, got %d messages", len(cur.Messages))
	}
	if cur.Messages[1].State != StateFailed {
		t.Fatalf("state %q, want failed", cur.Messages[1].State)
	}
}

func TestSendEmptyRejectedBeforeAnything(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(t, gw)

	err := s.Send("   \n ", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if gw.sendCount() != 0 {
		t.Fatalf("no network call expected")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("no session should have been created")
	}
}

func TestSendCreatesSessionImplicitly(t *testing.T) {
	s := newTestStore(t, &fakeGateway{})

	if err := s.Send("first message", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	cur, ok := s.Current()
	if !ok {
		t.Fatalf("expected implicit session")
	}
	if cur.Messages[0].ID != "system-welcome" {
		t.Fatalf("implicit session should carry the greeting")
	}
	if cur.Title != "first message" {
		t.Fatalf("title %q", cur.Title)
	}
}

func TestTitleDerivedOnceAndTruncated(t *testing.T) {
	s := newTestStore(t, &fakeGateway{})
	s.NewSession()

	long := strings.Repeat("екон", 10) // 40 runes, multibyte
	if err := s.Send(long, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	cur, _ := s.Current()
	want := string([]rune(long)[:30]) + "..."
	if cur.Title != want {
		t.Fatalf("title %q, want %q", cur.Title, want)
	}

	if err := s.Send("a completely different question", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	cur, _ = s.Current()
	if cur.Title != want {
		t.Fatalf("title must not change after the first user message, got %q", cur.Title)
	}
}

func TestFileValidation(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(t, gw)
	s.NewSession()

	cases := []struct {
		name string
		file FileUpload
	}{
		{"bad mime", FileUpload{Name: "notes.txt", Mime: "text/plain", Data: []byte("x")}},
		{"too large", FileUpload{Name: "big.pdf", Mime: "application/pdf", Size: MaxFileSize + 1}},
	}
	for _, tc := range cases {
		err := s.Send("look at this", &tc.file)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
	if len(gw.uploads) != 0 || gw.sendCount() != 0 {
		t.Fatalf("validation failures must not reach the network")
	}
	cur, _ := s.Current()
	if len(cur.Messages) != 1 {
		t.Fatalf("validation failures must not append messages")
	}
}

func TestFileUploadGatedByTopic(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(t, gw)
	s.NewSession()
	if err := s.SetTopic("2 Wheels"); err != nil {
		t.Fatalf("set topic: %v", err)
	}
	if s.CanAttach() {
		t.Fatalf("non-default topic must not allow upload")
	}

	file := FileUpload{Name: "report.pdf", Mime: "application/pdf", Data: []byte("%PDF")}
	err := s.Send("see attached", &file)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(gw.uploads) != 0 {
		t.Fatalf("upload must not be attempted")
	}
}

func TestSendUploadsBeforePosting(t *testing.T) {
	var order []string
	gw := &fakeGateway{}
	gw.uploadFn = func(FileUpload) (*UploadResult, error) {
		order = append(order, "upload")
		return &UploadResult{FileID: "file-9", URL: "/files/file-9"}, nil
	}
	gw.sendFn = func(id string, req SendRequest) (*SendResult, error) {
		order = append(order, "send")
		if req.FileID != "file-9" {
			t.Errorf("send carried file id %q", req.FileID)
		}
		return &SendResult{Content: "received"}, nil
	}
	s := newTestStore(t, gw)
	s.NewSession()

	file := FileUpload{Name: "report.pdf", Mime: "application/pdf", Data: []byte("%PDF")}
	if err := s.Send("summarize this", &file); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(order) != 2 || order[0] != "upload" || order[1] != "send" {
		t.Fatalf("order %v", order)
	}
	cur, _ := s.Current()
	att := cur.Messages[1].File
	if att == nil || att.Kind != AttachmentFull || att.ID != "file-9" || att.Name != "report.pdf" {
		t.Fatalf("attachment %+v", att)
	}
}

func TestUploadFailureFlagsMessageWithoutSending(t *testing.T) {
	gw := &fakeGateway{
		uploadFn: func(FileUpload) (*UploadResult, error) {
			return nil, errors.New("storage unavailable")
		},
	}
	s := newTestStore(t, gw)
	s.NewSession()

	file := FileUpload{Name: "chart.png", Mime: "image/png", Data: []byte("png")}
	if err := s.Send("see chart", &file); err == nil {
		t.Fatalf("expected error")
	}
	if gw.sendCount() != 0 {
		t.Fatalf("prompt must not be sent after a failed upload")
	}
	cur, _ := s.Current()
	if cur.Messages[1].State != StateFailed {
		t.Fatalf("state %q", cur.Messages[1].State)
	}
}

func TestSendReentrancy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gw := &fakeGateway{
		sendFn: func(string, SendRequest) (*SendResult, error) {
			close(started)
			<-release
			return &SendResult{Content: "done"}, nil
		},
	}
	s := newTestStore(t, gw)
	s.NewSession()

	done := make(chan error, 1)
	go func() { done <- s.Send("slow one", nil) }()
	<-started

	if err := s.Send("impatient", nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
	if gw.sendCount() != 1 {
		t.Fatalf("second send must not reach the gateway")
	}
}

func TestSelectFetchesAndSeedsGreeting(t *testing.T) {
	gw := &fakeGateway{
		historyFn: func() ([]HistoryEntry, error) {
			return []HistoryEntry{{ID: "remote-1", Title: "Old chat", Timestamp: time.Unix(100, 0)}}, nil
		},
		messagesFn: func(id string) ([]RemoteMessage, error) {
			return nil, nil // server has the session but no messages
		},
	}
	s := newTestStore(t, gw)
	if err := s.LoadHistory(); err != nil {
		t.Fatalf("load history: %v", err)
	}
	if err := s.Select("remote-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	cur, _ := s.Current()
	if cur.ID != "remote-1" || !cur.Loaded {
		t.Fatalf("session not current/loaded: %+v", cur)
	}
	if len(cur.Messages) != 1 || cur.Messages[0].ID != "system-welcome" {
		t.Fatalf("empty transcript should seed the greeting, got %+v", cur.Messages)
	}
}

func TestSelectConvertsRemoteMessages(t *testing.T) {
	ts := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	gw := &fakeGateway{
		historyFn: func() ([]HistoryEntry, error) {
			return []HistoryEntry{{ID: "remote-1", Timestamp: ts}}, nil
		},
		messagesFn: func(id string) ([]RemoteMessage, error) {
			return []RemoteMessage{
				{ID: "m1", Role: "user", Content: "How is GDP measured?", Timestamp: ts, FileID: "file-7"},
				{ID: "m2", Role: "assistant", Content: "Three approaches...", Timestamp: ts.Add(time.Second)},
			}, nil
		},
	}
	s := newTestStore(t, gw)
	s.LoadHistory()
	if err := s.Select("remote-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	cur, _ := s.Current()
	if len(cur.Messages) != 2 {
		t.Fatalf("got %d messages", len(cur.Messages))
	}
	if att := cur.Messages[0].File; att == nil || att.Kind != AttachmentRef || att.ID != "file-7" {
		t.Fatalf("attachment ref %+v", att)
	}
	// Placeholder title replaced by the first user message.
	if cur.Title != "How is GDP measured?" {
		t.Fatalf("title %q", cur.Title)
	}
}

func TestSelectFailureLeavesPointer(t *testing.T) {
	gw := &fakeGateway{
		historyFn: func() ([]HistoryEntry, error) {
			return []HistoryEntry{{ID: "remote-1", Title: "Old", Timestamp: time.Unix(100, 0)}}, nil
		},
		messagesFn: func(id string) ([]RemoteMessage, error) {
			return nil, errors.New("timeout")
		},
	}
	s := newTestStore(t, gw)
	home := s.NewSession()
	s.LoadHistory()

	if err := s.Select("remote-1"); err == nil {
		t.Fatalf("expected error")
	}
	cur, _ := s.Current()
	if cur.ID != home.ID {
		t.Fatalf("pointer moved to %s on failed select", cur.ID)
	}
}

func TestSelectReentrancy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex
	gw := &fakeGateway{
		historyFn: func() ([]HistoryEntry, error) {
			return []HistoryEntry{{ID: "remote-1", Timestamp: time.Unix(100, 0)}}, nil
		},
		messagesFn: func(id string) ([]RemoteMessage, error) {
			mu.Lock()
			calls++
			if calls == 1 {
				mu.Unlock()
				close(started)
				<-release
				return nil, nil
			}
			mu.Unlock()
			return nil, nil
		},
	}
	s := newTestStore(t, gw)
	s.LoadHistory()

	done := make(chan error, 1)
	go func() { done <- s.Select("remote-1") }()
	<-started

	// Second select while the fetch is in flight is a silent no-op.
	if err := s.Select("remote-1"); err != nil {
		t.Fatalf("concurrent select: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first select: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("transcript fetched %d times", calls)
	}
}

func TestLoadHistoryMergePreservesLoaded(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(t, gw)
	s.NewSession()
	if err := s.Send("local question", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	cur, _ := s.Current()

	gw.historyFn = func() ([]HistoryEntry, error) {
		return []HistoryEntry{
			{ID: cur.ID, Title: "Server title", Timestamp: time.Unix(500, 0)},
			{ID: "remote-2", Title: "Another chat", Timestamp: time.Unix(400, 0)},
		}, nil
	}
	if err := s.LoadHistory(); err != nil {
		t.Fatalf("load history: %v", err)
	}

	after, _ := s.Current()
	if after.Title != "Server title" {
		t.Fatalf("remote metadata should win, title %q", after.Title)
	}
	if len(after.Messages) != 3 {
		t.Fatalf("loaded transcript must be preserved, got %d messages", len(after.Messages))
	}
	entries := s.History()
	if len(entries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(entries))
	}
}

func TestLoadHistoryRetainsLocalOnlySession(t *testing.T) {
	gw := &fakeGateway{
		historyFn: func() ([]HistoryEntry, error) {
			return []HistoryEntry{{ID: "remote-1", Title: "Remote", Timestamp: time.Unix(100, 0)}}, nil
		},
	}
	s := newTestStore(t, gw)
	fresh := s.NewSession() // never sent, unknown to the server

	if err := s.LoadHistory(); err != nil {
		t.Fatalf("load history: %v", err)
	}
	entries := s.History()
	if len(entries) != 2 {
		t.Fatalf("local-only session dropped, got %d entries", len(entries))
	}
	cur, _ := s.Current()
	if cur.ID != fresh.ID {
		t.Fatalf("current pointer moved")
	}
}

func TestLoadHistorySelectsMostRecentWhenNoCurrent(t *testing.T) {
	gw := &fakeGateway{
		historyFn: func() ([]HistoryEntry, error) {
			return []HistoryEntry{
				{ID: "old", Title: "Old", Timestamp: time.Unix(100, 0)},
				{ID: "new", Title: "New", Timestamp: time.Unix(900, 0)},
			}, nil
		},
	}
	s := newTestStore(t, gw)
	if err := s.LoadHistory(); err != nil {
		t.Fatalf("load history: %v", err)
	}
	cur, ok := s.Current()
	if !ok || cur.ID != "new" {
		t.Fatalf("expected most recent session current, got %+v", cur)
	}
}

func TestLoadHistoryCreatesSessionWhenEmpty(t *testing.T) {
	s := newTestStore(t, &fakeGateway{})
	if err := s.LoadHistory(); err != nil {
		t.Fatalf("load history: %v", err)
	}
	cur, ok := s.Current()
	if !ok {
		t.Fatalf("expected a fresh session")
	}
	if cur.Title != "New Conversation" || len(cur.Messages) != 1 {
		t.Fatalf("unexpected session: %+v", cur)
	}
}

func TestDeleteSemantics(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(t, gw)
	first := s.NewSession()
	second := s.NewSession()

	// Deleting a non-current session leaves the pointer alone.
	if err := s.Delete(first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cur, _ := s.Current(); cur.ID != second.ID {
		t.Fatalf("pointer moved")
	}

	// Deleting the current session clears the pointer, no auto-create.
	if err := s.Delete(second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("pointer should be cleared")
	}
	if len(gw.deletes) != 2 {
		t.Fatalf("gateway deletes %v", gw.deletes)
	}

}

func TestDeleteUnknownIDStillConfirmsWithServer(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(t, gw)
	kept := s.NewSession()

	// The server may hold sessions this client has never listed, so the
	// gateway call goes out even for a locally unknown id.
	if err := s.Delete("nonexistent-id"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(gw.deletes) != 1 || gw.deletes[0] != "nonexistent-id" {
		t.Fatalf("gateway deletes %v", gw.deletes)
	}
	if cur, ok := s.Current(); !ok || cur.ID != kept.ID {
		t.Fatalf("local state must be untouched")
	}

	// A failed confirmation changes nothing locally either.
	gw.deleteFn = func(string) error { return errors.New("404") }
	if err := s.Delete("another-missing"); err == nil {
		t.Fatalf("expected error")
	}
	if cur, ok := s.Current(); !ok || cur.ID != kept.ID {
		t.Fatalf("local state must be untouched on failure")
	}
}

func TestDeleteKeepsSessionOnServerFailure(t *testing.T) {
	gw := &fakeGateway{
		deleteFn: func(string) error { return errors.New("403") },
	}
	s := newTestStore(t, gw)
	sess := s.NewSession()

	if err := s.Delete(sess.ID); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := s.Current(); !ok {
		t.Fatalf("session must survive an unconfirmed delete")
	}
}

func TestClearAll(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(t, gw)
	s.NewSession()
	s.NewSession()

	if err := s.ClearAll(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(s.History()) != 0 {
		t.Fatalf("sessions remain after clear")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("pointer remains after clear")
	}

	gw.clearFn = func() error { return errors.New("500") }
	s.NewSession()
	if err := s.ClearAll(); err == nil {
		t.Fatalf("expected error")
	}
	if len(s.History()) != 1 {
		t.Fatalf("sessions must survive an unconfirmed clear")
	}
}

func TestHistoryOrdering(t *testing.T) {
	gw := &fakeGateway{
		historyFn: func() ([]HistoryEntry, error) {
			return []HistoryEntry{
				{ID: "b", Title: "B", Timestamp: time.Unix(200, 0)},
				{ID: "c", Title: "C", Timestamp: time.Unix(300, 0)},
				{ID: "a2", Title: "A2", Timestamp: time.Unix(100, 0)},
				{ID: "a1", Title: "A1", Timestamp: time.Unix(100, 0)},
			}, nil
		},
	}
	s := newTestStore(t, gw)
	s.LoadHistory()

	var got []string
	for _, e := range s.History() {
		got = append(got, e.ID)
	}
	// Equal timestamps keep insertion order: a2 arrived before a1.
	want := []string{"c", "b", "a2", "a1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

func TestSessionIDFreshness(t *testing.T) {
	s := NewStore(&fakeGateway{}, nil)
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		sess := s.NewSession()
		if seen[sess.ID] {
			t.Fatalf("duplicate session id %s after %d generations", sess.ID, i)
		}
		seen[sess.ID] = true
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	db, err := kv.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	defer db.Close()

	gw := &fakeGateway{}
	s := NewStore(gw, db)
	sess := s.NewSession()
	if err := s.Send("persist me", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := s.SetTopic("Retail FnB"); err != nil {
		t.Fatalf("set topic: %v", err)
	}

	reopened := NewStore(gw, db)
	cur, ok := reopened.Current()
	if !ok || cur.ID != sess.ID {
		t.Fatalf("current pointer lost: %+v", cur)
	}
	if len(cur.Messages) != 3 {
		t.Fatalf("transcript lost, got %d messages", len(cur.Messages))
	}
	if cur.Title != "persist me" {
		t.Fatalf("title lost, got %q", cur.Title)
	}
	if reopened.Topic() != "Retail FnB" {
		t.Fatalf("topic lost, got %q", reopened.Topic())
	}
}

func TestResetDropsEverything(t *testing.T) {
	db, err := kv.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	defer db.Close()

	s := NewStore(&fakeGateway{}, db)
	s.NewSession()
	s.SetTopic("2 Wheels")
	s.Reset()

	if _, ok := s.Current(); ok {
		t.Fatalf("current survived reset")
	}
	if s.Topic() != DefaultTopic {
		t.Fatalf("topic survived reset")
	}
	reopened := NewStore(&fakeGateway{}, db)
	if len(reopened.History()) != 0 {
		t.Fatalf("persisted state survived reset")
	}
}
