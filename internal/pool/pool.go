package pool

// Resettable is a constraint for types that can wipe themselves back
// to their zero state before reuse.
type Resettable interface {
	Reset()
}

// Poolable is a constraint for pooled types: resettable and comparable,
// so the zero value can be told apart from a live item.
type Poolable interface {
	Resettable
	comparable
}

// Pool is a fixed-capacity object pool for reusing request-scoped
// allocations, such as decoded JSON payloads.
type Pool[T Poolable] struct {
	items chan T
}

// New creates a Pool holding at most capacity items.
func New[T Poolable](capacity int) *Pool[T] {
	return &Pool[T]{
		items: make(chan T, capacity),
	}
}

// Get returns a pooled item, or the zero value of T when the pool is
// empty. Callers must allocate on zero.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
		var zero T
		return zero
	}
}

// Put resets the item and returns it to the pool. When the pool is
// full the item is dropped for the garbage collector.
func (p *Pool[T]) Put(item T) {
	var zero T
	if item == zero {
		return
	}
	item.Reset()

	select {
	case p.items <- item:
	default:
	}
}
