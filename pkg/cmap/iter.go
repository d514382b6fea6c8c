package cmap

// Range calls fn for each entry until fn returns false.
// fn must not modify the map.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Keys returns all keys.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Count())
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Drain removes every entry and returns the removed values.
// Entries added concurrently to an already drained shard are kept.
func (m *Map[K, V]) Drain() []V {
	var values []V
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			values = append(values, v)
			delete(s.items, k)
		}
		s.mu.Unlock()
	}
	return values
}
