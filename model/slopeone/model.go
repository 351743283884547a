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
	"github.com/gorse-io/slopeone/common/heap"
	"github.com/gorse-io/slopeone/dataset"
	"github.com/gorse-io/slopeone/model/baseline"
)

// Model is a built Slope One model. It is never modified after Builder.Build returns and is
// safe for concurrent use.
type Model struct {
	corating  *CoratingMatrix
	deviation *DeviationMatrix
	baseline  baseline.Predictor
}

// Score is the predicted rating of an item.
type Score struct {
	ItemId int64
	Rating float64
}

// Baseline returns the baseline predictor of the model.
func (m *Model) Baseline() baseline.Predictor {
	return m.baseline
}

// Corating returns the number of training users who rated both items.
func (m *Model) Corating(item1, item2 int64) int {
	return m.corating.Get(item1, item2)
}

// Deviation returns the average of rating(item1) - rating(item2) and false if the pair was
// never co-rated.
func (m *Model) Deviation(item1, item2 int64) (float64, bool) {
	return m.deviation.Get(item1, item2)
}

// CountPairs returns the number of item pairs with a deviation.
func (m *Model) CountPairs() int {
	return m.deviation.Len()
}

// Predict estimates the rating of a user to an item. ratings are the ratings of the user.
//
// Each rated item i other than the target contributes baseline + dev(i, item), weighted by the
// number of users who co-rated i and the target. The prediction is the weighted average of the
// contributions, or the baseline itself when no rated item has a deviation to the target.
func (m *Model) Predict(userId int64, ratings *dataset.SparseVector, itemId int64) float64 {
	prediction := m.baseline.Predict(userId, itemId)
	sum, weight := 0.0, 0
	ratings.ForEach(func(i int64, _ float64) {
		if i == itemId {
			return
		}
		dev, ok := m.deviation.Get(i, itemId)
		if !ok {
			return
		}
		count := m.corating.Get(i, itemId)
		sum += float64(count) * dev
		weight += count
	})
	if weight > 0 {
		prediction += sum / float64(weight)
	}
	return prediction
}

// Recommend returns the top n candidates the user hasn't rated, ordered by predicted rating.
func (m *Model) Recommend(userId int64, ratings *dataset.SparseVector, candidates []int64, n int) []Score {
	filter := heap.NewTopKFilter[int64, float64](n)
	for _, itemId := range candidates {
		if ratings.Contains(itemId) {
			continue
		}
		filter.Push(itemId, m.Predict(userId, ratings, itemId))
	}
	elems := filter.PopAll()
	scores := make([]Score, len(elems))
	for i, elem := range elems {
		scores[i] = Score{ItemId: elem.Value, Rating: elem.Weight}
	}
	return scores
}

// Scorer binds a model to the snapshot supplying rating histories of users.
type Scorer struct {
	model    *Model
	snapshot dataset.Snapshot
}

func NewScorer(model *Model, snapshot dataset.Snapshot) *Scorer {
	return &Scorer{model: model, snapshot: snapshot}
}

func (s *Scorer) Model() *Model {
	return s.model
}

// Predict estimates the rating of a user to an item using the user's ratings in the snapshot.
func (s *Scorer) Predict(userId, itemId int64) float64 {
	return s.model.Predict(userId, s.snapshot.UserRatings(userId), itemId)
}

// Recommend returns the top n unrated candidates of a user.
func (s *Scorer) Recommend(userId int64, candidates []int64, n int) []Score {
	return s.model.Recommend(userId, s.snapshot.UserRatings(userId), candidates, n)
}
