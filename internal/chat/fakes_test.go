package chat

import (
	"context"
	"errors"
	"sync"
)

type frame struct {
	Event string
	Body  any
}

type fakeConn struct {
	id ConnID

	mu     sync.Mutex
	frames []frame
	full   bool
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: ConnID(id)} }

func (f *fakeConn) ID() ConnID { return f.id }

func (f *fakeConn) Send(event string, body any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.frames = append(f.frames, frame{Event: event, Body: body})
	return true
}

func (f *fakeConn) received(event string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, fr := range f.frames {
		if fr.Event == event {
			out = append(out, fr.Body)
		}
	}
	return out
}

type recordingStore struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (s *recordingStore) Append(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingStore) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

var errStoreDown = errors.New("store down")
