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

package dataset

import (
	"sort"
)

// SparseVector holds the ratings of a user. Indices are item ids in strictly ascending order
// and Values[i] is the rating of Indices[i]. Vectors handed out by a Snapshot are shared and
// must not be modified.
type SparseVector struct {
	Indices []int64
	Values  []float64
}

// NewSparseVector creates a sparse vector from an item -> rating map.
func NewSparseVector(ratings map[int64]float64) *SparseVector {
	vec := &SparseVector{
		Indices: make([]int64, 0, len(ratings)),
		Values:  make([]float64, len(ratings)),
	}
	for index := range ratings {
		vec.Indices = append(vec.Indices, index)
	}
	sort.Slice(vec.Indices, func(i, j int) bool {
		return vec.Indices[i] < vec.Indices[j]
	})
	for i, index := range vec.Indices {
		vec.Values[i] = ratings[index]
	}
	return vec
}

// Len returns the number of ratings. A nil vector is empty.
func (vec *SparseVector) Len() int {
	if vec == nil {
		return 0
	}
	return len(vec.Indices)
}

// Get returns the rating of an item and whether the item is rated.
func (vec *SparseVector) Get(index int64) (float64, bool) {
	if vec == nil {
		return 0, false
	}
	i := sort.Search(len(vec.Indices), func(i int) bool {
		return vec.Indices[i] >= index
	})
	if i < len(vec.Indices) && vec.Indices[i] == index {
		return vec.Values[i], true
	}
	return 0, false
}

// Contains returns true if the item is rated.
func (vec *SparseVector) Contains(index int64) bool {
	_, ok := vec.Get(index)
	return ok
}

// ForEach iterates ratings in ascending order of item ids.
func (vec *SparseVector) ForEach(f func(index int64, value float64)) {
	for i := 0; i < vec.Len(); i++ {
		f(vec.Indices[i], vec.Values[i])
	}
}

// Sum returns the sum of ratings.
func (vec *SparseVector) Sum() float64 {
	sum := 0.0
	vec.ForEach(func(_ int64, value float64) {
		sum += value
	})
	return sum
}
