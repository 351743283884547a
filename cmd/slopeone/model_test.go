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

package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/gorse-io/slopeone/config"
	"github.com/gorse-io/slopeone/dataset"
	"github.com/gorse-io/slopeone/storage/blob"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestBuildSaveLoadModel(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Database.DataStore = fmt.Sprintf("sqlite://%s/data.db", t.TempDir())
	cfg.Blob.Dir = t.TempDir()
	cfg.Model.Jobs = 2
	ctx := context.Background()

	database, err := openDatabase(cfg)
	assert.NoError(t, err)
	defer database.Close()
	err = database.BatchInsertRatings(ctx, []dataset.Rating{
		{UserId: 1, ItemId: 1, Value: 4},
		{UserId: 1, ItemId: 2, Value: 2},
		{UserId: 2, ItemId: 1, Value: 5},
		{UserId: 2, ItemId: 2, Value: 3},
		{UserId: 3, ItemId: 1, Value: 4},
	})
	assert.NoError(t, err)
	snapshot, err := database.LoadDataset(ctx)
	assert.NoError(t, err)

	store, err := blob.NewStore(cfg.Blob)
	assert.NoError(t, err)
	_, err = loadModel(cfg, store, snapshot)
	assert.True(t, errors.Is(err, errors.NotFound))

	model, err := buildModel(ctx, cfg, snapshot)
	assert.NoError(t, err)
	assert.NoError(t, saveModel(store, cfg.Model.Name, model))
	loaded, err := loadModel(cfg, store, snapshot)
	assert.NoError(t, err)

	assert.Equal(t, model.CountPairs(), loaded.CountPairs())
	assert.Equal(t, 2, loaded.Corating(1, 2))
	deviation, ok := loaded.Deviation(1, 2)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, deviation, 1e-9)
	ratings := snapshot.UserRatings(3)
	assert.InDelta(t, model.Predict(3, ratings, 2), loaded.Predict(3, ratings, 2), 1e-9)
}

func TestBuildModel_InvalidConfig(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Model.Deviation = "median"
	_, err := buildModel(context.Background(), cfg, dataset.NewDataset())
	assert.True(t, errors.Is(err, errors.NotValid))

	cfg = config.GetDefaultConfig()
	cfg.Model.Baseline = "median"
	_, err = buildModel(context.Background(), cfg, dataset.NewDataset())
	assert.True(t, errors.Is(err, errors.NotValid))
}
