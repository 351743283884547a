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

// DeviationMatrix stores a signed value per unordered item pair. Values are kept in canonical
// orientation (smaller id first); reading or writing in the reversed order negates the value.
// Before Compute the values are raw sums of rating differences, afterward they are deviations.
// A pair that was never observed is absent, which is distinct from a zero deviation.
type DeviationMatrix struct {
	values pairMap[float64]
}

func NewDeviationMatrix() *DeviationMatrix {
	return &DeviationMatrix{values: newPairMap[float64]()}
}

// Get returns the value of rating(item1) - rating(item2) and false if the pair is absent.
func (m *DeviationMatrix) Get(item1, item2 int64) (float64, bool) {
	a, b, swapped := canonical(item1, item2)
	value, ok := m.values.get(a, b)
	if !ok {
		return 0, false
	}
	if swapped {
		return -value, true
	}
	return value, true
}

// Put overwrites the value of rating(item1) - rating(item2).
func (m *DeviationMatrix) Put(item1, item2 int64, value float64) {
	a, b, swapped := canonical(item1, item2)
	if swapped {
		value = -value
	}
	m.values.put(a, b, value)
}

// Add accumulates a difference rating(item1) - rating(item2). The first difference of a pair
// initializes it.
func (m *DeviationMatrix) Add(item1, item2 int64, diff float64) {
	a, b, swapped := canonical(item1, item2)
	if swapped {
		diff = -diff
	}
	columns := m.values.row(a)
	if _, ok := columns[b]; !ok {
		m.values.size++
	}
	columns[b] += diff
}

// Merge adds raw sums of another matrix into this one.
func (m *DeviationMatrix) Merge(other *DeviationMatrix) {
	other.values.forEach(func(a, b int64, sum float64) {
		columns := m.values.row(a)
		if _, ok := columns[b]; !ok {
			m.values.size++
		}
		columns[b] += sum
	})
}

// Compute replaces every raw sum by computer.Normalize(sum, count). Pairs without co-ratings
// carry no observation and are dropped.
func (m *DeviationMatrix) Compute(computer DeviationComputer, corating *CoratingMatrix) {
	var empty []pair
	m.values.forEach(func(a, b int64, sum float64) {
		count := corating.Get(a, b)
		if count < 1 {
			empty = append(empty, pair{A: a, B: b})
			return
		}
		m.values.rows[a][b] = computer.Normalize(sum, count)
	})
	for _, p := range empty {
		m.values.remove(p.A, p.B)
	}
}

// Len returns the number of observed pairs.
func (m *DeviationMatrix) Len() int {
	return m.values.len()
}
