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
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

// Rating is the rating given by a user to an item.
type Rating struct {
	UserId int64
	ItemId int64
	Value  float64
}

// Snapshot supplies per-user rating vectors to model builders.
type Snapshot interface {
	// UserIds returns ids of users with at least one rating.
	UserIds() []int64
	// UserRatings returns ratings of a user in ascending order of item ids. Unknown users
	// have an empty vector.
	UserRatings(userId int64) *SparseVector
}

// Dataset is an in-memory Snapshot. It is safe for concurrent reads once loading is finished.
type Dataset struct {
	ratings map[int64]map[int64]float64
	items   mapset.Set[int64]
	count   int
	sum     float64

	mu      sync.RWMutex
	vectors map[int64]*SparseVector
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		ratings: make(map[int64]map[int64]float64),
		items:   mapset.NewThreadUnsafeSet[int64](),
		vectors: make(map[int64]*SparseVector),
	}
}

// NewDatasetFromRatings creates a dataset from a slice of ratings.
func NewDatasetFromRatings(ratings []Rating) *Dataset {
	d := NewDataset()
	for _, rating := range ratings {
		d.AddRating(rating.UserId, rating.ItemId, rating.Value)
	}
	return d
}

// AddRating inserts a rating. A later rating of the same user and item replaces the earlier one.
func (d *Dataset) AddRating(userId, itemId int64, value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	userRatings, exist := d.ratings[userId]
	if !exist {
		userRatings = make(map[int64]float64)
		d.ratings[userId] = userRatings
	}
	if previous, exist := userRatings[itemId]; exist {
		d.sum -= previous
	} else {
		d.count++
	}
	userRatings[itemId] = value
	d.sum += value
	d.items.Add(itemId)
	delete(d.vectors, userId)
}

func (d *Dataset) UserIds() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	userIds := lo.Keys(d.ratings)
	slices.Sort(userIds)
	return userIds
}

// ItemIds returns ids of rated items in ascending order.
func (d *Dataset) ItemIds() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	itemIds := d.items.ToSlice()
	slices.Sort(itemIds)
	return itemIds
}

func (d *Dataset) UserRatings(userId int64) *SparseVector {
	d.mu.RLock()
	vec, exist := d.vectors[userId]
	d.mu.RUnlock()
	if exist {
		return vec
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if vec, exist = d.vectors[userId]; exist {
		return vec
	}
	vec = NewSparseVector(d.ratings[userId])
	d.vectors[userId] = vec
	return vec
}

func (d *Dataset) CountUsers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ratings)
}

func (d *Dataset) CountItems() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.items.Cardinality()
}

func (d *Dataset) CountRatings() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

// GlobalMean returns the mean of all ratings, or zero for an empty dataset.
func (d *Dataset) GlobalMean() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.count == 0 {
		return 0
	}
	return d.sum / float64(d.count)
}
