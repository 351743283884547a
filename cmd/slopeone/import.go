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
	"os"

	"github.com/gorse-io/slopeone/base/log"
	"github.com/gorse-io/slopeone/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCommand = &cobra.Command{
	Use:   "import <file>",
	Short: "Import ratings from a CSV file into the data store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sep, _ := cmd.Flags().GetString("sep")
		header, _ := cmd.Flags().GetBool("header")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		if batchSize <= 0 {
			return errors.NotValidf("batch size %d", batchSize)
		}

		// open file
		file, err := os.Open(args[0])
		if err != nil {
			return errors.Trace(err)
		}
		defer file.Close()
		info, err := file.Stat()
		if err != nil {
			return errors.Trace(err)
		}
		// parse ratings
		readBar := progressbar.DefaultBytes(info.Size(), "Reading ratings")
		pbReader := progressbar.NewReader(file, readBar)
		ratings, err := dataset.LoadRatings(&pbReader, sep, header)
		if err != nil {
			return errors.Trace(err)
		}
		_ = readBar.Finish()

		// insert ratings
		database, err := openDatabase(conf)
		if err != nil {
			return errors.Trace(err)
		}
		defer database.Close()
		bar := progressbar.Default(int64(len(ratings)), "Inserting ratings")
		for _, batch := range lo.Chunk(ratings, batchSize) {
			if err = database.BatchInsertRatings(cmd.Context(), batch); err != nil {
				return errors.Trace(err)
			}
			_ = bar.Add(len(batch))
		}
		log.Logger().Info("import ratings", zap.String("file", args[0]), zap.Int("n_ratings", len(ratings)))
		return nil
	},
}

func init() {
	importCommand.Flags().String("sep", ",", "separator of fields")
	importCommand.Flags().Bool("header", false, "skip the first line")
	importCommand.Flags().Int("batch-size", 10000, "number of ratings inserted per batch")
	rootCommand.AddCommand(importCommand)
}
