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
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

const maxLineSize = 1024 * 1024

// LoadRatings parses lines of `user<sep>item<sep>rating[<sep>...]`. Extra fields such as
// timestamps are ignored. Blank lines are skipped and the first line is skipped if header is true.
func LoadRatings(r io.Reader, sep string, header bool) ([]Rating, error) {
	var ratings []Rating
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if header && lineNumber == 1 {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) < 3 {
			return nil, errors.NotValidf("line %d: expect at least 3 fields but got %d", lineNumber, len(fields))
		}
		userId, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, errors.NewNotValid(err, "line "+strconv.Itoa(lineNumber))
		}
		itemId, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, errors.NewNotValid(err, "line "+strconv.Itoa(lineNumber))
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, errors.NewNotValid(err, "line "+strconv.Itoa(lineNumber))
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, errors.NotValidf("line %d: rating %v", lineNumber, value)
		}
		ratings = append(ratings, Rating{UserId: userId, ItemId: itemId, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return ratings, nil
}

// LoadDataset loads a dataset from a ratings file.
func LoadDataset(path, sep string, header bool) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	ratings, err := LoadRatings(file, sep, header)
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", path)
	}
	return NewDatasetFromRatings(ratings), nil
}
