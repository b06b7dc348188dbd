package memory

// table keeps rows by key and remembers insertion order, which is the
// natural order every List call returns
type table[K comparable, V any] struct {
	rows  map[K]V
	order []K
}

func newTable[K comparable, V any]() *table[K, V] {
	return &table[K, V]{rows: make(map[K]V)}
}

func (t *table[K, V]) get(k K) (V, bool) {
	v, ok := t.rows[k]
	return v, ok
}

func (t *table[K, V]) put(k K, v V) {
	if _, exists := t.rows[k]; !exists {
		t.order = append(t.order, k)
	}
	t.rows[k] = v
}

func (t *table[K, V]) delete(k K) bool {
	if _, exists := t.rows[k]; !exists {
		return false
	}
	delete(t.rows, k)
	for i, key := range t.order {
		if key == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[K, V]) list() []V {
	out := make([]V, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.rows[k])
	}
	return out
}

// filter returns the rows matching keep, in insertion order
func (t *table[K, V]) filter(keep func(V) bool) []V {
	var out []V
	for _, k := range t.order {
		if v := t.rows[k]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}
