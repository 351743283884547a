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

// Package baseline provides context-free rating estimators. Slope One adds item deviations
// on top of one of these.
package baseline

import (
	"github.com/gorse-io/slopeone/dataset"
	"github.com/juju/errors"
)

const (
	ConstantName     = "constant"
	GlobalMeanName   = "global_mean"
	ItemMeanName     = "item_mean"
	UserMeanName     = "user_mean"
	UserItemMeanName = "user_item_mean"
)

// Predictor predicts the rating of a user to an item without looking at neighbors.
type Predictor interface {
	Predict(userId, itemId int64) float64
}

// Params selects and configures a baseline predictor.
type Params struct {
	Name     string
	Damping  float64
	Constant float64
}

// New fits the baseline predictor named in params on a snapshot.
func New(params Params, snapshot dataset.Snapshot) (Predictor, error) {
	if params.Damping < 0 {
		return nil, errors.NotValidf("negative damping %v", params.Damping)
	}
	switch params.Name {
	case ConstantName:
		return &Constant{Value: params.Constant}, nil
	case GlobalMeanName:
		return NewGlobalMean(snapshot), nil
	case ItemMeanName:
		return NewItemMean(snapshot, params.Damping), nil
	case UserMeanName:
		return NewUserMean(snapshot, params.Damping), nil
	case UserItemMeanName:
		return NewUserItemMean(snapshot, params.Damping), nil
	default:
		return nil, errors.NotValidf("baseline %q", params.Name)
	}
}

// Constant predicts the same value for every user and item.
type Constant struct {
	Value float64
}

func (c *Constant) Predict(_, _ int64) float64 {
	return c.Value
}

// GlobalMean predicts the mean of all ratings.
type GlobalMean struct {
	Mean float64
}

func NewGlobalMean(snapshot dataset.Snapshot) *GlobalMean {
	return &GlobalMean{Mean: globalMean(snapshot)}
}

func (g *GlobalMean) Predict(_, _ int64) float64 {
	return g.Mean
}

// ItemMean predicts the global mean plus the damped mean offset of the item:
//
//	b_i = Σ_u (r_ui - μ) / (n_i + damping)
type ItemMean struct {
	GlobalMean float64
	ItemBias   map[int64]float64
}

func NewItemMean(snapshot dataset.Snapshot, damping float64) *ItemMean {
	mean := globalMean(snapshot)
	return &ItemMean{
		GlobalMean: mean,
		ItemBias:   itemBias(snapshot, mean, damping),
	}
}

func (m *ItemMean) Predict(_, itemId int64) float64 {
	return m.GlobalMean + m.ItemBias[itemId]
}

// UserMean predicts the global mean plus the damped mean offset of the user:
//
//	b_u = Σ_i (r_ui - μ) / (n_u + damping)
type UserMean struct {
	GlobalMean float64
	UserBias   map[int64]float64
}

func NewUserMean(snapshot dataset.Snapshot, damping float64) *UserMean {
	mean := globalMean(snapshot)
	userBias := make(map[int64]float64)
	for _, userId := range snapshot.UserIds() {
		ratings := snapshot.UserRatings(userId)
		if ratings.Len() == 0 {
			continue
		}
		sum := 0.0
		ratings.ForEach(func(_ int64, value float64) {
			sum += value - mean
		})
		userBias[userId] = sum / (float64(ratings.Len()) + damping)
	}
	return &UserMean{GlobalMean: mean, UserBias: userBias}
}

func (m *UserMean) Predict(userId, _ int64) float64 {
	return m.GlobalMean + m.UserBias[userId]
}

// UserItemMean predicts the item mean plus the damped mean offset of the user from item means:
//
//	b_u = Σ_i (r_ui - μ - b_i) / (n_u + damping)
type UserItemMean struct {
	ItemMean
	UserBias map[int64]float64
}

func NewUserItemMean(snapshot dataset.Snapshot, damping float64) *UserItemMean {
	itemMean := NewItemMean(snapshot, damping)
	userBias := make(map[int64]float64)
	for _, userId := range snapshot.UserIds() {
		ratings := snapshot.UserRatings(userId)
		if ratings.Len() == 0 {
			continue
		}
		sum := 0.0
		ratings.ForEach(func(itemId int64, value float64) {
			sum += value - itemMean.Predict(userId, itemId)
		})
		userBias[userId] = sum / (float64(ratings.Len()) + damping)
	}
	return &UserItemMean{ItemMean: *itemMean, UserBias: userBias}
}

func (m *UserItemMean) Predict(userId, itemId int64) float64 {
	return m.ItemMean.Predict(userId, itemId) + m.UserBias[userId]
}

func globalMean(snapshot dataset.Snapshot) float64 {
	sum, count := 0.0, 0
	for _, userId := range snapshot.UserIds() {
		ratings := snapshot.UserRatings(userId)
		sum += ratings.Sum()
		count += ratings.Len()
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func itemBias(snapshot dataset.Snapshot, mean, damping float64) map[int64]float64 {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, userId := range snapshot.UserIds() {
		snapshot.UserRatings(userId).ForEach(func(itemId int64, value float64) {
			sums[itemId] += value - mean
			counts[itemId]++
		})
	}
	bias := make(map[int64]float64, len(sums))
	for itemId, sum := range sums {
		bias[itemId] = sum / (float64(counts[itemId]) + damping)
	}
	return bias
}
