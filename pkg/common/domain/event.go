package domain

// Event is a domain event emitted by a service after a successful
// state change.
type Event interface {
	Type() string
}

// EventDispatcher delivers domain events to interested subscribers.
// Dispatch is best-effort: services ignore its error.
type EventDispatcher interface {
	Dispatch(event Event) error
}
