// Copyright 2020 gorse Project Authors
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
package config

import (
	"sync"

	"github.com/gorse-io/slopeone/dataset"
	"github.com/gorse-io/slopeone/model/slopeone"
	"github.com/gorse-io/slopeone/storage/data"
)

// Settings are shared by the commands and the REST server.
type Settings struct {
	Config *Config

	// database clients
	DataClient data.Database

	// recommendation model
	mu      sync.RWMutex
	dataset *dataset.Dataset
	scorer  *slopeone.Scorer
}

func NewSettings() *Settings {
	return &Settings{
		Config:     GetDefaultConfig(),
		DataClient: data.NoDatabase{},
	}
}

// SetModel replaces the serving model and the snapshot it predicts from.
func (s *Settings) SetModel(snapshot *dataset.Dataset, model *slopeone.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = snapshot
	s.scorer = slopeone.NewScorer(model, snapshot)
}

// Model returns the serving snapshot and scorer. Both are nil before SetModel is called.
func (s *Settings) Model() (*dataset.Dataset, *slopeone.Scorer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.scorer
}
