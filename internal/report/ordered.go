package report

// OrderedMap - отображение, сохраняющее порядок вставки ключей.
// Итерация по нему детерминирована, в отличие от встроенного map.
// OrderedMap is a map that iterates in key insertion order.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

// Get returns the value stored under k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Set stores v under k, appending k to the order on first insertion.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// GetOrInit returns the value under k, storing init() first if k is new.
func (m *OrderedMap[K, V]) GetOrInit(k K, init func() V) V {
	if v, ok := m.values[k]; ok {
		return v
	}
	v := init()
	m.Set(k, v)
	return v
}

// Len returns the number of keys.
func (m *OrderedMap[K, V]) Len() int { return len(m.keys) }

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (m *OrderedMap[K, V]) Each(fn func(k K, v V)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Map returns a plain map copy, handy for order-independent comparisons.
func (m *OrderedMap[K, V]) Map() map[K]V {
	out := make(map[K]V, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
