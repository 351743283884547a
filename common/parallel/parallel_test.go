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

package parallel

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		a := lo.Range(10000)
		b := make([]int, len(a))
		workerIds := make([]int, len(a))
		// multiple threads
		err := Parallel(context.Background(), len(a), 4, func(workerId, jobId int) error {
			b[jobId] = a[jobId]
			workerIds[jobId] = workerId
			time.Sleep(time.Microsecond)
			return nil
		})
		assert.NoError(t, err)
		workersSet := mapset.NewSet(workerIds...)
		assert.Equal(t, a, b)
		assert.GreaterOrEqual(t, 4, workersSet.Cardinality())
		assert.Less(t, 1, workersSet.Cardinality())
		// single thread
		err = Parallel(context.Background(), len(a), 1, func(workerId, jobId int) error {
			b[jobId] = a[jobId]
			workerIds[jobId] = workerId
			return nil
		})
		assert.NoError(t, err)
		workersSet = mapset.NewSet(workerIds...)
		assert.Equal(t, a, b)
		assert.Equal(t, 1, workersSet.Cardinality())
	})
}

func TestParallelError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		err := Parallel(context.Background(), 100, 4, func(_, jobId int) error {
			if jobId == 42 {
				return fmt.Errorf("job %d failed", jobId)
			}
			return nil
		})
		assert.EqualError(t, err, "job 42 failed")
		err = Parallel(context.Background(), 100, 1, func(_, jobId int) error {
			if jobId == 7 {
				return fmt.Errorf("job %d failed", jobId)
			}
			return nil
		})
		assert.EqualError(t, err, "job 7 failed")
	})
}

func TestParallelCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var count atomic.Int32
		err := Parallel(ctx, 1000, 4, func(_, jobId int) error {
			if jobId == 0 {
				cancel()
			}
			count.Add(1)
			time.Sleep(100 * time.Microsecond)
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, int(count.Load()), 1000)

		// canceled before start
		err = Parallel(ctx, 10, 1, func(_, _ int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMapReduce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		results, err := MapReduce(context.Background(), 100, 4, func(jobId int) (int, error) {
			time.Sleep(time.Microsecond)
			return jobId * jobId, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, lo.Map(lo.Range(100), func(i int, _ int) int { return i * i }), results)

		_, err = MapReduce(context.Background(), 100, 4, func(jobId int) (int, error) {
			if jobId == 3 {
				return 0, fmt.Errorf("bad job")
			}
			return jobId, nil
		})
		assert.Error(t, err)
	})
}

func TestSplit(t *testing.T) {
	a := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	b := Split(a, 3)
	assert.Equal(t, [][]int{{1, 2, 3, 4}, {5, 6, 7}, {8, 9, 10}}, b)

	a = []int{1, 2, 3}
	b = Split(a, 4)
	assert.Equal(t, [][]int{{1}, {2}, {3}}, b)

	assert.Nil(t, Split([]int{}, 3))
	assert.Equal(t, [][]int{{1, 2}}, Split([]int{1, 2}, 0))
}
