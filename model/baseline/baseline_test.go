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

package baseline

import (
	"testing"

	"github.com/gorse-io/slopeone/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

const delta = 1e-9

func newTestDataset() *dataset.Dataset {
	// μ = 3
	return dataset.NewDatasetFromRatings([]dataset.Rating{
		{UserId: 1, ItemId: 1, Value: 5},
		{UserId: 1, ItemId: 2, Value: 3},
		{UserId: 2, ItemId: 1, Value: 3},
		{UserId: 2, ItemId: 2, Value: 1},
	})
}

func TestConstant(t *testing.T) {
	p, err := New(Params{Name: ConstantName, Constant: 2.5}, newTestDataset())
	assert.NoError(t, err)
	assert.Equal(t, 2.5, p.Predict(1, 1))
	assert.Equal(t, 2.5, p.Predict(100, 100))
}

func TestGlobalMean(t *testing.T) {
	p, err := New(Params{Name: GlobalMeanName}, newTestDataset())
	assert.NoError(t, err)
	assert.Equal(t, 3.0, p.Predict(1, 1))
	assert.Zero(t, NewGlobalMean(dataset.NewDataset()).Predict(1, 1))
}

func TestItemMean(t *testing.T) {
	p := NewItemMean(newTestDataset(), 0)
	assert.InDelta(t, 4.0, p.Predict(1, 1), delta)
	assert.InDelta(t, 2.0, p.Predict(1, 2), delta)
	// unknown item falls back to the global mean
	assert.InDelta(t, 3.0, p.Predict(1, 3), delta)

	damped := NewItemMean(newTestDataset(), 2)
	assert.InDelta(t, 3.5, damped.Predict(1, 1), delta)
}

func TestUserMean(t *testing.T) {
	p := NewUserMean(newTestDataset(), 0)
	assert.InDelta(t, 4.0, p.Predict(1, 1), delta)
	assert.InDelta(t, 2.0, p.Predict(2, 1), delta)
	assert.InDelta(t, 3.0, p.Predict(3, 1), delta)
}

func TestUserItemMean(t *testing.T) {
	p, err := New(Params{Name: UserItemMeanName}, newTestDataset())
	assert.NoError(t, err)
	// item means are 4 and 2, user 1 is one above them and user 2 one below
	assert.InDelta(t, 5.0, p.Predict(1, 1), delta)
	assert.InDelta(t, 3.0, p.Predict(1, 2), delta)
	assert.InDelta(t, 1.0, p.Predict(2, 2), delta)
	assert.InDelta(t, 4.0, p.Predict(3, 1), delta)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Params{Name: "unknown"}, newTestDataset())
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = New(Params{Name: ItemMeanName, Damping: -1}, newTestDataset())
	assert.True(t, errors.Is(err, errors.NotValid))
}
