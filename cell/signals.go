package cell

// A WriteableSignal is a mutable reactive leaf. It owns its value and the
// list of derived nodes that read it during their last evaluation. It is
// never auto-destroyed; ownership stays with whoever holds the reference.
type WriteableSignal[T any] struct {
	rs          *ReactiveSystem
	value       T
	equals      func(a, b T) bool
	dependents  []dependent
	subscribers []*subscription[T]
	queued      bool
}

func Signal[T any](rs *ReactiveSystem, initialValue T) *WriteableSignal[T] {
	return &WriteableSignal[T]{
		rs:     rs,
		value:  initialValue,
		equals: sameValue[T],
	}
}

// SignalWithEquals overrides the change-detection comparison, for callers
// that want deep or custom equality instead of same-value semantics.
func SignalWithEquals[T any](rs *ReactiveSystem, initialValue T, equals func(a, b T) bool) *WriteableSignal[T] {
	return &WriteableSignal[T]{
		rs:     rs,
		value:  initialValue,
		equals: equals,
	}
}

// Value returns the current value, registering the signal as a dependency of
// the node currently evaluating, if any.
func (s *WriteableSignal[T]) Value() T {
	if a := s.rs.active; a != nil {
		a.graph().track(s)
	}
	return s.value
}

// SetValue is a no-op when v is the same value as the current one.
// Otherwise it stores v, runs the dirty walk over the dependent graph, and
// notifies plain subscribers, deferred and coalesced under a batch.
func (s *WriteableSignal[T]) SetValue(v T) {
	if s.equals(s.value, v) {
		return
	}
	s.value = v
	s.rs.propagate(&s.dependents)
	s.notifySubscribers()
}

func (s *WriteableSignal[T]) Update(fn func(prev T) T) {
	s.SetValue(fn(s.value))
}

// Subscribe registers cb and returns its unsubscribe function. Unsubscribe
// is idempotent and O(1) via swap-with-last-and-pop.
func (s *WriteableSignal[T]) Subscribe(cb func(T)) (unsubscribe func()) {
	sub := &subscription[T]{cb: cb}
	s.subscribers = append(s.subscribers, sub)
	return func() {
		s.subscribers = removeSubscription(s.subscribers, sub)
	}
}

func (s *WriteableSignal[T]) notifySubscribers() {
	if len(s.subscribers) == 0 {
		return
	}
	if s.rs.batching() {
		if s.queued {
			return
		}
		s.queued = true
		s.rs.enqueue(func() {
			s.queued = false
			s.fanout()
		})
		return
	}
	s.fanout()
}

// fanout iterates by index so subscribers added mid-notification also fire,
// and reads the value per call so a deferred flush sees the final one.
func (s *WriteableSignal[T]) fanout() {
	for i := 0; i < len(s.subscribers); i++ {
		s.subscribers[i].cb(s.value)
	}
}

func (s *WriteableSignal[T]) addDependent(d dependent) {
	s.dependents = append(s.dependents, d)
}

func (s *WriteableSignal[T]) removeDependent(d dependent) {
	s.dependents = removeDependent(s.dependents, d)
}
