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
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/slopeone/model/baseline"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of slopeone.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Model    ModelConfig    `mapstructure:"model"`
	Server   ServerConfig   `mapstructure:"server"`
}

// DatabaseConfig is the configuration of the rating store.
type DatabaseConfig struct {
	DataStore   string `mapstructure:"data_store" validate:"data_store"`
	TablePrefix string `mapstructure:"table_prefix"`
}

// BlobConfig is the configuration of the model store. Models are kept in S3 when an endpoint
// is set and in Dir otherwise.
type BlobConfig struct {
	Dir string   `mapstructure:"dir"`
	S3  S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket" validate:"required_with=Endpoint"`
	Prefix          string `mapstructure:"prefix"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// ModelConfig is the configuration of Slope One models.
type ModelConfig struct {
	Name             string  `mapstructure:"name" validate:"required"`
	Baseline         string  `mapstructure:"baseline" validate:"oneof=constant global_mean item_mean user_mean user_item_mean"`
	BaselineDamping  float64 `mapstructure:"baseline_damping" validate:"gte=0"`
	BaselineConstant float64 `mapstructure:"baseline_constant"`
	Deviation        string  `mapstructure:"deviation" validate:"oneof=mean damped"`
	DeviationDamping float64 `mapstructure:"deviation_damping" validate:"gte=0"`
	Jobs             int     `mapstructure:"jobs" validate:"gt=0"`
}

// BaselineParams returns parameters of the configured baseline predictor.
func (c *ModelConfig) BaselineParams() baseline.Params {
	return baseline.Params{
		Name:     c.Baseline,
		Damping:  c.BaselineDamping,
		Constant: c.BaselineConstant,
	}
}

// ServerConfig is the configuration of the REST server.
type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	APIKey      string        `mapstructure:"api_key"`
	DefaultN    int           `mapstructure:"default_n" validate:"gt=0"`
	CacheSize   uint64        `mapstructure:"cache_size"`
	CacheExpire time.Duration `mapstructure:"cache_expire" validate:"gte=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DataStore: "sqlite://data.db",
		},
		Blob: BlobConfig{
			Dir: "models",
		},
		Model: ModelConfig{
			Name:      "slope_one.bin",
			Baseline:  baseline.UserItemMeanName,
			Deviation: "mean",
			Jobs:      1,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8087,
			DefaultN:    10,
			CacheSize:   10000,
			CacheExpire: time.Minute,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [database]
	v.SetDefault("database.data_store", defaultConfig.Database.DataStore)
	v.SetDefault("database.table_prefix", defaultConfig.Database.TablePrefix)
	// [blob]
	v.SetDefault("blob.dir", defaultConfig.Blob.Dir)
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.prefix", "")
	v.SetDefault("blob.s3.use_ssl", false)
	// [model]
	v.SetDefault("model.name", defaultConfig.Model.Name)
	v.SetDefault("model.baseline", defaultConfig.Model.Baseline)
	v.SetDefault("model.baseline_damping", defaultConfig.Model.BaselineDamping)
	v.SetDefault("model.baseline_constant", defaultConfig.Model.BaselineConstant)
	v.SetDefault("model.deviation", defaultConfig.Model.Deviation)
	v.SetDefault("model.deviation_damping", defaultConfig.Model.DeviationDamping)
	v.SetDefault("model.jobs", defaultConfig.Model.Jobs)
	// [server]
	v.SetDefault("server.host", defaultConfig.Server.Host)
	v.SetDefault("server.port", defaultConfig.Server.Port)
	v.SetDefault("server.api_key", defaultConfig.Server.APIKey)
	v.SetDefault("server.default_n", defaultConfig.Server.DefaultN)
	v.SetDefault("server.cache_size", defaultConfig.Server.CacheSize)
	v.SetDefault("server.cache_expire", defaultConfig.Server.CacheExpire)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads configuration from toml file. Environment variables override values of
// the file. An empty path loads defaults and environment variables only.
func LoadConfig(path string) (*Config, error) {
	// set default config
	v := viper.New()
	setDefault(v)

	// bind environment bindings
	bindings := []configBinding{
		{"database.data_store", "SLOPEONE_DATA_STORE"},
		{"database.table_prefix", "SLOPEONE_TABLE_PREFIX"},
		{"blob.dir", "SLOPEONE_BLOB_DIR"},
		{"blob.s3.endpoint", "SLOPEONE_S3_ENDPOINT"},
		{"blob.s3.access_key_id", "SLOPEONE_S3_ACCESS_KEY_ID"},
		{"blob.s3.secret_access_key", "SLOPEONE_S3_SECRET_ACCESS_KEY"},
		{"blob.s3.bucket", "SLOPEONE_S3_BUCKET"},
		{"blob.s3.prefix", "SLOPEONE_S3_PREFIX"},
		{"model.jobs", "SLOPEONE_MODEL_JOBS"},
		{"server.api_key", "SLOPEONE_SERVER_API_KEY"},
	}
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// load config file
	if path != "" {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// unmarshal config file
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
