package dashboard

import (
	"time"

	"github.com/theirongolddev/odash/internal/model"
)

// ChangeKind says what happened to a lane.
type ChangeKind string

const (
	ChangeStarted ChangeKind = "started"
	ChangeLoaded  ChangeKind = "loaded"
	ChangeFailed  ChangeKind = "failed"
)

// Change is emitted after every mutation of a lane.
type Change struct {
	Lane model.Lane
	Kind ChangeKind
	At   time.Time
}

const subscriberBuffer = 16

// Subscribe returns a channel of changes and a func that ends the
// subscription. A subscriber that falls behind misses events; it should
// re-read the store rather than rely on every Change arriving.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() { s.unsubscribe(id) }
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) notify(lane model.Lane, kind ChangeKind) {
	ev := Change{Lane: lane, Kind: kind, At: s.now()}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close ends every subscription. Fetches still in flight complete and
// update state, but nobody is notified.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
