package events

// Type identifies different kinds of application events
type Type string

// Event interface that all events must implement
type Event interface {
	Type() Type
}

// Handler is a function that processes events
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// Bus manages event subscriptions and dispatches. It is not safe for
// concurrent use; all subscribers run on the update thread.
type Bus struct {
	subscribers map[Type][]subscription
	nextID      int
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Type][]subscription),
	}
}

// Subscribe registers a handler for a specific event type and returns a
// cancel function that removes it again.
func (b *Bus) Subscribe(eventType Type, handler Handler) func() {
	b.nextID++
	id := b.nextID
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: handler})

	return func() {
		subs := b.subscribers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subscribers[eventType]) == 0 {
			delete(b.subscribers, eventType)
		}
	}
}

// Emit dispatches an event to all subscribed handlers
func (b *Bus) Emit(event Event) {
	for _, sub := range b.subscribers[event.Type()] {
		sub.handler(event)
	}
}
