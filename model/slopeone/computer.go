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
	"github.com/juju/errors"
)

const (
	MeanDeviationName   = "mean"
	DampedDeviationName = "damped"
)

// DeviationComputer turns the accumulated rating difference of an item pair into its final
// deviation. count is always at least one.
type DeviationComputer interface {
	Normalize(sum float64, count int) float64
}

// NewDeviationComputer creates a deviation computer by name.
func NewDeviationComputer(name string, damping float64) (DeviationComputer, error) {
	switch name {
	case MeanDeviationName:
		return MeanDeviation{}, nil
	case DampedDeviationName:
		if damping < 0 {
			return nil, errors.NotValidf("negative damping %v", damping)
		}
		return DampedDeviation{Damping: damping}, nil
	default:
		return nil, errors.NotValidf("deviation computer %q", name)
	}
}

// MeanDeviation is the arithmetic mean of observed differences.
type MeanDeviation struct{}

func (MeanDeviation) Normalize(sum float64, count int) float64 {
	return sum / float64(count)
}

// DampedDeviation shrinks deviations of rarely co-rated pairs toward zero:
//
//	dev = sum / (count + damping)
type DampedDeviation struct {
	Damping float64
}

func (d DampedDeviation) Normalize(sum float64, count int) float64 {
	return sum / (float64(count) + d.Damping)
}
