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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestSparseVector(t *testing.T) {
	vec := NewSparseVector(map[int64]float64{30: 3, 10: 1, 20: 2})
	assert.Equal(t, []int64{10, 20, 30}, vec.Indices)
	assert.Equal(t, []float64{1, 2, 3}, vec.Values)
	assert.Equal(t, 3, vec.Len())
	assert.Equal(t, 6.0, vec.Sum())

	value, ok := vec.Get(20)
	assert.True(t, ok)
	assert.Equal(t, 2.0, value)
	_, ok = vec.Get(25)
	assert.False(t, ok)
	_, ok = vec.Get(40)
	assert.False(t, ok)
	assert.True(t, vec.Contains(10))
	assert.False(t, vec.Contains(0))

	var indices []int64
	vec.ForEach(func(index int64, _ float64) {
		indices = append(indices, index)
	})
	assert.Equal(t, []int64{10, 20, 30}, indices)
}

func TestNilSparseVector(t *testing.T) {
	var vec *SparseVector
	assert.Zero(t, vec.Len())
	assert.False(t, vec.Contains(1))
	vec.ForEach(func(int64, float64) {
		assert.Fail(t, "nil vector is empty")
	})
}

func TestDataset(t *testing.T) {
	d := NewDatasetFromRatings([]Rating{
		{UserId: 2, ItemId: 1, Value: 5},
		{UserId: 1, ItemId: 2, Value: 2},
		{UserId: 1, ItemId: 1, Value: 4},
		{UserId: 3, ItemId: 3, Value: 1},
	})
	assert.Equal(t, []int64{1, 2, 3}, d.UserIds())
	assert.Equal(t, []int64{1, 2, 3}, d.ItemIds())
	assert.Equal(t, 3, d.CountUsers())
	assert.Equal(t, 3, d.CountItems())
	assert.Equal(t, 4, d.CountRatings())
	assert.Equal(t, 3.0, d.GlobalMean())
	assert.Equal(t, &SparseVector{Indices: []int64{1, 2}, Values: []float64{4, 2}}, d.UserRatings(1))
	assert.Zero(t, d.UserRatings(100).Len())

	// overwrite a rating
	d.AddRating(1, 2, 3)
	assert.Equal(t, 4, d.CountRatings())
	assert.Equal(t, 13.0/4, d.GlobalMean())
	assert.Equal(t, []float64{4, 3}, d.UserRatings(1).Values)
}

func TestDatasetConcurrentReads(t *testing.T) {
	d := NewDataset()
	for i := int64(0); i < 100; i++ {
		d.AddRating(i%10, i, float64(i%5+1))
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Go(func() {
			for _, userId := range d.UserIds() {
				assert.Equal(t, 10, d.UserRatings(userId).Len())
			}
		})
	}
	wg.Wait()
}

func TestEmptyDataset(t *testing.T) {
	d := NewDataset()
	assert.Empty(t, d.UserIds())
	assert.Zero(t, d.GlobalMean())
}

func TestLoadRatings(t *testing.T) {
	ratings, err := LoadRatings(strings.NewReader("1::10::5::978300760\n1::20::3::978302109\n\n2::10::4.5::978301968\n"), "::", false)
	assert.NoError(t, err)
	assert.Equal(t, []Rating{
		{UserId: 1, ItemId: 10, Value: 5},
		{UserId: 1, ItemId: 20, Value: 3},
		{UserId: 2, ItemId: 10, Value: 4.5},
	}, ratings)

	ratings, err = LoadRatings(strings.NewReader("userId,movieId,rating\n7,8,2.5\n"), ",", true)
	assert.NoError(t, err)
	assert.Equal(t, []Rating{{UserId: 7, ItemId: 8, Value: 2.5}}, ratings)

	_, err = LoadRatings(strings.NewReader("1\t2\n"), "\t", false)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = LoadRatings(strings.NewReader("1\tx\t3\n"), "\t", false)
	assert.ErrorContains(t, err, "line 1")
	_, err = LoadRatings(strings.NewReader("1\t2\tgood\n"), "\t", false)
	assert.Error(t, err)
}

func TestLoadRatings_NonFinite(t *testing.T) {
	for _, value := range []string{"NaN", "Inf", "-Inf", "+inf"} {
		_, err := LoadRatings(strings.NewReader("1,1,4\n1,2,"+value+"\n2,1,5\n"), ",", false)
		assert.True(t, errors.Is(err, errors.NotValid), value)
		assert.ErrorContains(t, err, "line 2", value)
	}
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	assert.NoError(t, os.WriteFile(path, []byte("1,1,4\n1,2,2\n2,1,5\n2,2,3\n"), 0644))
	d, err := LoadDataset(path, ",", false)
	assert.NoError(t, err)
	assert.Equal(t, 4, d.CountRatings())

	_, err = LoadDataset(filepath.Join(t.TempDir(), "missing.csv"), ",", false)
	assert.Error(t, err)
}
