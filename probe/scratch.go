package probe

// Scratch is a caller-owned staging buffer for "query, then copy out"
// enumeration. Its capacity only grows.
type Scratch[T any] struct {
	data []T
}

// Reset empties the buffer and makes room for at least n elements. The
// returned slice has length zero and aliases the buffer.
func (s *Scratch[T]) Reset(n int) []T {
	if cap(s.data) < n {
		s.data = make([]T, 0, n)
	}
	s.data = s.data[:0]
	return s.data
}

func (s *Scratch[T]) Cap() int {
	return cap(s.data)
}
