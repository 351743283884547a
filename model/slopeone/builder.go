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
	"context"
	"time"

	"github.com/gorse-io/slopeone/base/log"
	"github.com/gorse-io/slopeone/common/parallel"
	"github.com/gorse-io/slopeone/dataset"
	"github.com/gorse-io/slopeone/model/baseline"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Builder computes a Slope One model from a rating snapshot.
//
// Every user contributes one observation to each pair of items they rated, so building
// costs O(Σ_u k_u²) time where k_u is the number of items rated by user u. A few users with
// very long histories can dominate both time and memory. Memory is proportional to the number
// of distinct co-rated pairs.
type Builder struct {
	baseline baseline.Predictor
	computer DeviationComputer
	jobs     int
}

func NewBuilder() *Builder {
	return &Builder{jobs: 1}
}

// SetBaselinePredictor sets the baseline predictor wrapped by built models.
func (b *Builder) SetBaselinePredictor(predictor baseline.Predictor) *Builder {
	b.baseline = predictor
	return b
}

// SetDeviationComputer sets the strategy normalizing accumulated differences.
func (b *Builder) SetDeviationComputer(computer DeviationComputer) *Builder {
	b.computer = computer
	return b
}

// SetJobs sets the number of goroutines accumulating pairs. Users are split into one chunk per
// job and partial matrices are merged in chunk order.
func (b *Builder) SetJobs(jobs int) *Builder {
	b.jobs = max(jobs, 1)
	return b
}

// Build accumulates co-ratings and rating differences of all users, normalizes the
// differences and wraps the result into an immutable model. It fails before doing any work
// if the baseline predictor or the deviation computer is missing. The build checks ctx
// between users and stops with ctx.Err() once it is canceled.
func (b *Builder) Build(ctx context.Context, snapshot dataset.Snapshot) (*Model, error) {
	if b.baseline == nil {
		return nil, errors.NotAssignedf("baseline predictor")
	}
	if b.computer == nil {
		return nil, errors.NotAssignedf("deviation computer")
	}
	start := time.Now()
	userIds := snapshot.UserIds()
	log.Logger().Info("start building slope one model",
		zap.Int("n_users", len(userIds)), zap.Int("n_jobs", b.jobs))

	var (
		corating  *CoratingMatrix
		deviation *DeviationMatrix
	)
	if b.jobs <= 1 {
		var err error
		if corating, deviation, err = accumulate(ctx, snapshot, userIds); err != nil {
			return nil, errors.Trace(err)
		}
	} else {
		chunks := parallel.Split(userIds, b.jobs)
		partials, err := parallel.MapReduce(ctx, len(chunks), b.jobs, func(jobId int) (partialMatrices, error) {
			c, d, err := accumulate(ctx, snapshot, chunks[jobId])
			return partialMatrices{corating: c, deviation: d}, err
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		corating, deviation = NewCoratingMatrix(), NewDeviationMatrix()
		for _, partial := range partials {
			corating.Merge(partial.corating)
			deviation.Merge(partial.deviation)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	deviation.Compute(b.computer, corating)
	log.Logger().Info("complete building slope one model",
		zap.Int("n_users", len(userIds)),
		zap.Int("n_pairs", deviation.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return &Model{
		corating:  corating,
		deviation: deviation,
		baseline:  b.baseline,
	}, nil
}

type partialMatrices struct {
	corating  *CoratingMatrix
	deviation *DeviationMatrix
}

// accumulate counts co-ratings and sums rating differences over the given users. Items of a
// vector are visited in ascending order and each item is paired only with later items, so
// every unordered pair is seen once per user and self pairs never occur.
func accumulate(ctx context.Context, snapshot dataset.Snapshot, userIds []int64) (*CoratingMatrix, *DeviationMatrix, error) {
	corating, deviation := NewCoratingMatrix(), NewDeviationMatrix()
	for _, userId := range userIds {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		ratings := snapshot.UserRatings(userId)
		for i := 0; i < ratings.Len(); i++ {
			item1, rating1 := ratings.Indices[i], ratings.Values[i]
			for j := i + 1; j < ratings.Len(); j++ {
				item2, rating2 := ratings.Indices[j], ratings.Values[j]
				corating.Increment(item1, item2)
				deviation.Add(item1, item2, rating1-rating2)
			}
		}
	}
	return corating, deviation, nil
}
