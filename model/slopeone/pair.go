// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slopeone

import (
	"sort"
)

// pair is a canonical unordered item pair, A < B except for self pairs.
type pair struct {
	A, B int64
}

// canonical orders an item pair by id and reports whether the order was swapped.
func canonical(item1, item2 int64) (int64, int64, bool) {
	if item1 > item2 {
		return item2, item1, true
	}
	return item1, item2, false
}

// pairMap stores a value per canonical pair. Rows are keyed by the smaller id and columns
// by the larger id, so memory grows with observed pairs rather than the item universe.
type pairMap[V any] struct {
	rows map[int64]map[int64]V
	size int
}

func newPairMap[V any]() pairMap[V] {
	return pairMap[V]{rows: make(map[int64]map[int64]V)}
}

func (m *pairMap[V]) get(a, b int64) (V, bool) {
	value, ok := m.rows[a][b]
	return value, ok
}

// row returns the columns of a, creating them if needed.
func (m *pairMap[V]) row(a int64) map[int64]V {
	columns, ok := m.rows[a]
	if !ok {
		columns = make(map[int64]V)
		m.rows[a] = columns
	}
	return columns
}

func (m *pairMap[V]) put(a, b int64, value V) {
	columns := m.row(a)
	if _, ok := columns[b]; !ok {
		m.size++
	}
	columns[b] = value
}

func (m *pairMap[V]) remove(a, b int64) {
	columns, ok := m.rows[a]
	if !ok {
		return
	}
	if _, ok = columns[b]; ok {
		delete(columns, b)
		m.size--
		if len(columns) == 0 {
			delete(m.rows, a)
		}
	}
}

func (m *pairMap[V]) len() int {
	return m.size
}

// forEach visits pairs in no particular order. f may overwrite the value of the visited pair.
func (m *pairMap[V]) forEach(f func(a, b int64, value V)) {
	for a, columns := range m.rows {
		for b, value := range columns {
			f(a, b, value)
		}
	}
}

// keys returns all pairs in ascending order.
func (m *pairMap[V]) keys() []pair {
	keys := make([]pair, 0, m.size)
	m.forEach(func(a, b int64, _ V) {
		keys = append(keys, pair{A: a, B: b})
	})
	sortPairs(keys)
	return keys
}

func sortPairs(pairs []pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}
