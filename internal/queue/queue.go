// Package queue provides a value-based binary heap for top-k selection.
package queue

// Heap is a binary heap ordered by a less function. The element for which
// less reports true against every other element sits at the top.
type Heap[T any] struct {
	less  func(a, b T) bool
	items []T
}

// New returns an empty heap with room for capacity items.
func New[T any](capacity int, less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{
		less:  less,
		items: make([]T, 0, capacity),
	}
}

// Len returns the number of items in the heap.
func (h *Heap[T]) Len() int { return len(h.items) }

// Top returns the top item.
func (h *Heap[T]) Top() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// Push inserts an item.
func (h *Heap[T]) Push(item T) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

// Pop removes and returns the top item.
func (h *Heap[T]) Pop() (T, bool) {
	var zero T
	n := len(h.items)
	if n == 0 {
		return zero, false
	}
	root := h.items[0]
	last := h.items[n-1]
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	if n-1 > 0 {
		h.items[0] = last
		h.siftDown(0)
	}
	return root, true
}

// PushBounded keeps at most k items. Once full, item replaces the top only if
// the top orders before it. It reports whether item was kept.
func (h *Heap[T]) PushBounded(item T, k int) bool {
	if k <= 0 {
		return false
	}
	if len(h.items) < k {
		h.Push(item)
		return true
	}
	if !h.less(h.items[0], item) {
		return false
	}
	h.items[0] = item
	h.siftDown(0)
	return true
}

// Drain pops every item into dst in pop order and empties the heap.
func (h *Heap[T]) Drain(dst []T) []T {
	for len(h.items) > 0 {
		item, _ := h.Pop()
		dst = append(dst, item)
	}
	return dst
}

// Reset clears the heap for reuse.
func (h *Heap[T]) Reset() {
	clear(h.items)
	h.items = h.items[:0]
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.less(h.items[i], h.items[p]) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *Heap[T]) siftDown(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && h.less(h.items[r], h.items[l]) {
			best = r
		}
		if !h.less(h.items[best], h.items[i]) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}
