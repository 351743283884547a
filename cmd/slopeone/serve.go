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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorse-io/slopeone/base/log"
	"github.com/gorse-io/slopeone/config"
	"github.com/gorse-io/slopeone/server"
	"github.com/gorse-io/slopeone/storage/blob"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions and recommendations through RESTful APIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.NewSettings()
		settings.Config = conf
		database, err := openDatabase(conf)
		if err != nil {
			return errors.Trace(err)
		}
		defer database.Close()
		settings.DataClient = database
		store, err := blob.NewStore(conf.Blob)
		if err != nil {
			return errors.Trace(err)
		}

		// load model, build one if missing
		snapshot, err := database.LoadDataset(cmd.Context())
		if err != nil {
			return errors.Trace(err)
		}
		model, err := loadModel(conf, store, snapshot)
		if errors.Is(err, errors.NotFound) {
			log.Logger().Info("model not found, build a new one", zap.String("name", conf.Model.Name))
			if model, err = buildModel(cmd.Context(), conf, snapshot); err != nil {
				return errors.Trace(err)
			}
			if err = saveModel(store, conf.Model.Name, model); err != nil {
				return errors.Trace(err)
			}
		} else if err != nil {
			return errors.Trace(err)
		}

		s := server.NewRestServer(settings)
		s.SetModel(snapshot, model)
		// stop server
		go func() {
			sigint := make(chan os.Signal, 1)
			signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
			<-sigint
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				log.Logger().Error("failed to shutdown http server", zap.Error(err))
			}
		}()
		// start server
		if err = s.StartHttpServer(); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("stop slopeone server successfully")
		return nil
	},
}

func init() {
	rootCommand.AddCommand(serveCommand)
}
