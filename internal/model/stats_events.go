package model

// StatsEventKind identifies a stat change notification.
type StatsEventKind int8

const (
	StatsHPChanged StatsEventKind = iota
	StatsMPChanged
	StatsDeath
)

// String returns human-readable event name.
func (k StatsEventKind) String() string {
	switch k {
	case StatsHPChanged:
		return "hp_changed"
	case StatsMPChanged:
		return "mp_changed"
	case StatsDeath:
		return "death"
	default:
		return "unknown"
	}
}

// StatsEvent is the payload delivered to stat listeners.
// Current/Max hold HP for HP and death events, MP for MP events.
type StatsEvent struct {
	Kind    StatsEventKind
	Current int
	Max     int
}

// StatsListener receives stat change notifications synchronously.
type StatsListener func(StatsEvent)

// Subscribe registers a listener and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (s *Stats) Subscribe(fn StatsListener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, statsSubscription{id: id, fn: fn})

	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Stats) emit(ev StatsEvent) {
	if len(s.listeners) == 0 {
		return
	}
	// Listeners may unsubscribe while being notified.
	subs := make([]statsSubscription, len(s.listeners))
	copy(subs, s.listeners)
	for _, sub := range subs {
		sub.fn(ev)
	}
}
