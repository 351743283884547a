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
	"time"

	"github.com/gorse-io/slopeone/base/log"
	"github.com/gorse-io/slopeone/config"
	"github.com/gorse-io/slopeone/dataset"
	"github.com/gorse-io/slopeone/model/baseline"
	"github.com/gorse-io/slopeone/model/slopeone"
	"github.com/gorse-io/slopeone/storage/blob"
	"github.com/gorse-io/slopeone/storage/data"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

func openDatabase(cfg *config.Config) (data.Database, error) {
	database, err := data.Open(cfg.Database.DataStore, cfg.Database.TablePrefix)
	if err != nil {
		return nil, errors.Annotatef(err, "open %s", log.RedactDBURL(cfg.Database.DataStore))
	}
	if err = database.Init(); err != nil {
		return nil, errors.Trace(err)
	}
	return database, nil
}

// buildModel fits the configured baseline and builds a Slope One model on it.
func buildModel(ctx context.Context, cfg *config.Config, snapshot *dataset.Dataset) (*slopeone.Model, error) {
	predictor, err := baseline.New(cfg.Model.BaselineParams(), snapshot)
	if err != nil {
		return nil, errors.Trace(err)
	}
	computer, err := slopeone.NewDeviationComputer(cfg.Model.Deviation, cfg.Model.DeviationDamping)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return slopeone.NewBuilder().
		SetBaselinePredictor(predictor).
		SetDeviationComputer(computer).
		SetJobs(cfg.Model.Jobs).
		Build(ctx, snapshot)
}

func saveModel(store blob.Store, name string, model *slopeone.Model) error {
	start := time.Now()
	w, done, err := store.Create(name)
	if err != nil {
		return errors.Trace(err)
	}
	if err = model.Marshal(w); err != nil {
		_ = w.Close()
		<-done
		return errors.Trace(err)
	}
	if err = w.Close(); err != nil {
		return errors.Trace(err)
	}
	if err = <-done; err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("save model", zap.String("name", name), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// loadModel reads a model blob and attaches a baseline fitted on the snapshot.
func loadModel(cfg *config.Config, store blob.Store, snapshot *dataset.Dataset) (*slopeone.Model, error) {
	predictor, err := baseline.New(cfg.Model.BaselineParams(), snapshot)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r, err := store.Open(cfg.Model.Name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	model, err := slopeone.Unmarshal(r, predictor)
	if err != nil {
		return nil, errors.Annotatef(err, "load model %s", cfg.Model.Name)
	}
	return model, nil
}
