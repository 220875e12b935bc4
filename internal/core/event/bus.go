package event

import "reflect"

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered during tick N+1, after SwapBuffers. Event types are dispatched
// in the order they were first emitted, and events of one type in emit order.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
	order    []reflect.Type
	emitted  uint64
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event for the next tick.
func Emit[T any](b *Bus, event T) {
	t := typeOf[T]()
	if _, seen := b.back[t]; !seen {
		if _, known := b.front[t]; !known {
			b.order = append(b.order, t)
		}
	}
	b.back[t] = append(b.back[t], event)
	b.emitted++
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers makes last tick's events current and clears the back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers the current events to their handlers and returns how
// many events were delivered.
func (b *Bus) DispatchAll() int {
	n := 0
	for _, t := range b.order {
		events := b.front[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				callHandler(h, ev)
			}
		}
		n += len(events)
	}
	return n
}

// Emitted is the total number of events ever queued.
func (b *Bus) Emitted() uint64 { return b.emitted }

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
