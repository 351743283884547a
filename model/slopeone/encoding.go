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
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/gorse-io/slopeone/base/encoding"
	"github.com/gorse-io/slopeone/model/baseline"
	"github.com/juju/errors"
)

const (
	modelFormat  = "slope-one"
	modelVersion = 1
)

type modelHeader struct {
	Version int
	Pairs   int64
}

// pairRecord is the fixed-size encoding of one canonical pair. HasDeviation keeps an absent
// deviation apart from a zero one.
type pairRecord struct {
	Item1        int64
	Item2        int64
	Count        int64
	HasDeviation bool
	Deviation    float64
}

// Marshal writes co-ratings and deviations to a byte stream. Pairs are written in ascending
// canonical order. The baseline predictor is not part of the stream.
func (m *Model) Marshal(w io.Writer) error {
	keys := m.corating.counts.keys()
	m.deviation.values.forEach(func(a, b int64, _ float64) {
		if _, ok := m.corating.counts.get(a, b); !ok {
			keys = append(keys, pair{A: a, B: b})
		}
	})
	sortPairs(keys)

	writer := bufio.NewWriter(w)
	if err := encoding.WriteString(writer, modelFormat); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(writer, modelHeader{
		Version: modelVersion,
		Pairs:   int64(len(keys)),
	}); err != nil {
		return errors.Trace(err)
	}
	for _, key := range keys {
		count, _ := m.corating.counts.get(key.A, key.B)
		dev, hasDeviation := m.deviation.values.get(key.A, key.B)
		if err := binary.Write(writer, binary.LittleEndian, pairRecord{
			Item1:        key.A,
			Item2:        key.B,
			Count:        int64(count),
			HasDeviation: hasDeviation,
			Deviation:    dev,
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(writer.Flush())
}

// Unmarshal reads a model written by Marshal and attaches a baseline predictor to it.
func Unmarshal(r io.Reader, predictor baseline.Predictor) (*Model, error) {
	if predictor == nil {
		return nil, errors.NotAssignedf("baseline predictor")
	}
	reader := bufio.NewReader(r)
	format, err := encoding.ReadString(reader)
	if err != nil {
		return nil, errors.Annotate(err, "read model format")
	}
	if format != modelFormat {
		return nil, errors.NotValidf("model format %q", format)
	}
	var header modelHeader
	if err := encoding.ReadGob(reader, &header); err != nil {
		return nil, errors.Annotate(err, "read model header")
	}
	if header.Version != modelVersion {
		return nil, errors.NotSupportedf("model version %d", header.Version)
	}
	if header.Pairs < 0 {
		return nil, errors.NotValidf("number of pairs %d", header.Pairs)
	}
	model := &Model{
		corating:  NewCoratingMatrix(),
		deviation: NewDeviationMatrix(),
		baseline:  predictor,
	}
	for i := int64(0); i < header.Pairs; i++ {
		var record pairRecord
		if err := binary.Read(reader, binary.LittleEndian, &record); err != nil {
			return nil, errors.Annotatef(err, "read pair %d", i)
		}
		if record.Item1 >= record.Item2 {
			return nil, errors.NotValidf("pair (%d, %d) out of canonical order", record.Item1, record.Item2)
		}
		if record.Count < 0 {
			return nil, errors.NotValidf("negative co-rating count of pair (%d, %d)", record.Item1, record.Item2)
		}
		if record.Count > 0 {
			model.corating.Put(record.Item1, record.Item2, int(record.Count))
		}
		if record.HasDeviation && record.Count == 0 {
			return nil, errors.NotValidf("deviation of pair (%d, %d) without co-ratings", record.Item1, record.Item2)
		}
		if record.HasDeviation && (math.IsNaN(record.Deviation) || math.IsInf(record.Deviation, 0)) {
			return nil, errors.NotValidf("deviation %v of pair (%d, %d)", record.Deviation, record.Item1, record.Item2)
		}
		if record.HasDeviation {
			model.deviation.Put(record.Item1, record.Item2, record.Deviation)
		}
	}
	return model, nil
}
