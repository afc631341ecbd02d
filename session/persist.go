package session

import (
	"encoding/json"
	"sort"

	"github.com/charmbracelet/log"
)

// stateKey holds the whole chat state as one JSON document. Unknown fields
// in an older or newer document are ignored on decode.
const stateKey = "splashbot/chat/state"

type persistedState struct {
	Current  string    `json:"current"`
	Topic    string    `json:"topic"`
	Sessions []Session `json:"sessions"`
}

// persistLocked writes the state document. Persistence is best effort: a
// write failure is logged, never allowed to fail the chat operation that
// triggered it. Caller holds the mutex.
func (s *Store) persistLocked() {
	if s.kv == nil {
		return
	}
	state := persistedState{
		Current:  s.current,
		Topic:    string(s.topic),
		Sessions: make([]Session, 0, len(s.sessions)),
	}
	for _, sess := range s.sessions {
		state.Sessions = append(state.Sessions, *sess)
	}
	sort.Slice(state.Sessions, func(i, j int) bool {
		return state.Sessions[i].ID < state.Sessions[j].ID
	})
	data, err := json.Marshal(state)
	if err != nil {
		log.Warn("encode chat state", "err", err)
		return
	}
	if err := s.kv.Set(stateKey, string(data)); err != nil {
		log.Warn("persist chat state", "err", err)
	}
}

func (s *Store) restore() {
	if s.kv == nil {
		return
	}
	raw, ok, err := s.kv.Get(stateKey)
	if err != nil {
		log.Warn("read chat state", "err", err)
		return
	}
	if !ok {
		return
	}
	var state persistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Warn("decode chat state, starting fresh", "err", err)
		return
	}
	for i := range state.Sessions {
		sess := state.Sessions[i]
		if sess.ID == "" {
			continue
		}
		s.sessions[sess.ID] = &sess
		if sess.Seq >= s.nextSeq {
			s.nextSeq = sess.Seq + 1
		}
	}
	if _, ok := s.sessions[state.Current]; ok {
		s.current = state.Current
	}
	if t, ok := ParseTopic(state.Topic); ok {
		s.topic = t
	}
}
