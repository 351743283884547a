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

	"github.com/gorse-io/slopeone/model/slopeone"
	"github.com/gorse-io/slopeone/storage/blob"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var predictCommand = &cobra.Command{
	Use:   "predict <user-id> [item-id...]",
	Short: "Predict ratings of a user, or recommend items if no item is given",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, len(args))
		for i, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return errors.NewNotValid(err, arg)
			}
			ids[i] = id
		}
		userId, itemIds := ids[0], ids[1:]

		database, err := openDatabase(conf)
		if err != nil {
			return errors.Trace(err)
		}
		defer database.Close()
		store, err := blob.NewStore(conf.Blob)
		if err != nil {
			return errors.Trace(err)
		}
		snapshot, err := database.LoadDataset(cmd.Context())
		if err != nil {
			return errors.Trace(err)
		}
		model, err := loadModel(conf, store, snapshot)
		if errors.Is(err, errors.NotFound) {
			return errors.Annotate(err, "run `slopeone build` first")
		} else if err != nil {
			return errors.Trace(err)
		}
		scorer := slopeone.NewScorer(model, snapshot)

		var scores []slopeone.Score
		if len(itemIds) == 0 {
			n, _ := cmd.Flags().GetInt("n")
			scores = scorer.Recommend(userId, snapshot.ItemIds(), n)
		} else {
			for _, itemId := range itemIds {
				scores = append(scores, slopeone.Score{ItemId: itemId, Rating: scorer.Predict(userId, itemId)})
			}
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("User", "Item", "Rating")
		for _, score := range scores {
			if err = table.Append([]string{
				strconv.FormatInt(userId, 10),
				strconv.FormatInt(score.ItemId, 10),
				strconv.FormatFloat(score.Rating, 'f', 4, 64),
			}); err != nil {
				return errors.Trace(err)
			}
		}
		return errors.Trace(table.Render())
	},
}

func init() {
	predictCommand.Flags().Int("n", 10, "number of recommended items")
	rootCommand.AddCommand(predictCommand)
}
