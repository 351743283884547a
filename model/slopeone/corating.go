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

// CoratingMatrix counts, for every unordered item pair, the users who rated both items.
// Absent pairs have a count of zero.
type CoratingMatrix struct {
	counts pairMap[int]
}

func NewCoratingMatrix() *CoratingMatrix {
	return &CoratingMatrix{counts: newPairMap[int]()}
}

// Get returns the number of users who rated both items. The order of items doesn't matter.
func (m *CoratingMatrix) Get(item1, item2 int64) int {
	a, b, _ := canonical(item1, item2)
	count, _ := m.counts.get(a, b)
	return count
}

// Put overwrites the count of a pair.
func (m *CoratingMatrix) Put(item1, item2 int64, count int) {
	a, b, _ := canonical(item1, item2)
	m.counts.put(a, b, count)
}

// Increment adds one to the count of a pair.
func (m *CoratingMatrix) Increment(item1, item2 int64) {
	a, b, _ := canonical(item1, item2)
	columns := m.counts.row(a)
	if _, ok := columns[b]; !ok {
		m.counts.size++
	}
	columns[b]++
}

// Merge adds counts of another matrix into this one.
func (m *CoratingMatrix) Merge(other *CoratingMatrix) {
	other.counts.forEach(func(a, b int64, count int) {
		columns := m.counts.row(a)
		if _, ok := columns[b]; !ok {
			m.counts.size++
		}
		columns[b] += count
	})
}

// Len returns the number of pairs with a stored count.
func (m *CoratingMatrix) Len() int {
	return m.counts.len()
}
