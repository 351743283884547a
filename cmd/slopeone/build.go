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
	"strconv"
	"time"

	"github.com/gorse-io/slopeone/storage/blob"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var buildCommand = &cobra.Command{
	Use:   "build",
	Short: "Build a Slope One model from ratings in the data store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
			conf.Model.Jobs = jobs
		}
		database, err := openDatabase(conf)
		if err != nil {
			return errors.Trace(err)
		}
		defer database.Close()
		store, err := blob.NewStore(conf.Blob)
		if err != nil {
			return errors.Trace(err)
		}

		start := time.Now()
		snapshot, err := database.LoadDataset(cmd.Context())
		if err != nil {
			return errors.Trace(err)
		}
		model, err := buildModel(cmd.Context(), conf, snapshot)
		if err != nil {
			return errors.Trace(err)
		}
		if err = saveModel(store, conf.Model.Name, model); err != nil {
			return errors.Trace(err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		rows := [][]string{
			{"Model", conf.Model.Name},
			{"Baseline", conf.Model.Baseline},
			{"Deviation", conf.Model.Deviation},
			{"Users", strconv.Itoa(snapshot.CountUsers())},
			{"Items", strconv.Itoa(snapshot.CountItems())},
			{"Ratings", strconv.Itoa(snapshot.CountRatings())},
			{"Pairs", strconv.Itoa(model.CountPairs())},
			{"Elapsed", time.Since(start).String()},
		}
		for _, row := range rows {
			if err = table.Append(row); err != nil {
				return errors.Trace(err)
			}
		}
		return errors.Trace(table.Render())
	},
}

func init() {
	buildCommand.Flags().IntP("jobs", "j", 0, "number of jobs (overrides model.jobs)")
	rootCommand.AddCommand(buildCommand)
}
