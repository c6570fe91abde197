package viewstate

// OptimisticState is the lifecycle of a client-side optimistic update.
type OptimisticState string

const (
	Pending   OptimisticState = "pending"
	Confirmed OptimisticState = "confirmed"
	Reverted  OptimisticState = "reverted"
)

// Optimistic tracks a value the client shows before the server answers.
// It starts Pending and settles exactly once: Confirmed when the server
// agrees, Reverted when it disagrees or the request fails. On revert Value
// holds what the client must display instead.
type Optimistic[T comparable] struct {
	State    OptimisticState `json:"state"`
	Value    T               `json:"value"`
	previous T
}

// Apply starts an optimistic change from current to next.
func Apply[T comparable](current, next T) *Optimistic[T] {
	return &Optimistic[T]{State: Pending, Value: next, previous: current}
}

// Settle reconciles with the server's authoritative value. It reports false
// if the update had already settled.
func (o *Optimistic[T]) Settle(server T) bool {
	if o.State != Pending {
		return false
	}
	if server == o.Value {
		o.State = Confirmed
		return true
	}
	o.State, o.Value = Reverted, server
	return true
}

// Fail rolls back to the value shown before the change.
func (o *Optimistic[T]) Fail() bool {
	if o.State != Pending {
		return false
	}
	o.State, o.Value = Reverted, o.previous
	return true
}
