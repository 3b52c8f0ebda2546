package store

// table is an insertion-ordered collection with an id index. The slice is
// the source of truth for order; the map only accelerates point lookups.
// Not safe for concurrent use on its own; the Store's lock guards every
// access.
type table[T any] struct {
	rows []T
	byID map[string]int
	key  func(T) string
}

func newTable[T any](key func(T) string) *table[T] {
	return &table[T]{byID: make(map[string]int), key: key}
}

func (t *table[T]) len() int { return len(t.rows) }

func (t *table[T]) add(row T) {
	t.byID[t.key(row)] = len(t.rows)
	t.rows = append(t.rows, row)
}

func (t *table[T]) get(id string) (T, bool) {
	if i, ok := t.byID[id]; ok {
		return t.rows[i], true
	}
	var zero T
	return zero, false
}

func (t *table[T]) has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// mutate applies fn to the row in place. Reports false when the id is
// absent, leaving the collection untouched.
func (t *table[T]) mutate(id string, fn func(*T)) bool {
	i, ok := t.byID[id]
	if !ok {
		return false
	}
	fn(&t.rows[i])
	return true
}

// remove deletes the row while preserving the order of the remaining rows.
func (t *table[T]) remove(id string) (T, bool) {
	i, ok := t.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	removed := t.rows[i]
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	delete(t.byID, id)
	for j := i; j < len(t.rows); j++ {
		t.byID[t.key(t.rows[j])] = j
	}
	return removed, true
}

// list returns a copy of the rows in insertion order.
func (t *table[T]) list() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

// filter returns matching rows in insertion order.
func (t *table[T]) filter(pred func(T) bool) []T {
	out := []T{}
	for _, row := range t.rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}
