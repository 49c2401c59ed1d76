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

package config

import (
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/gorse-als/model/cf"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of a run.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Split     SplitConfig     `mapstructure:"split"`
	Search    SearchConfig    `mapstructure:"search"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// DataConfig is the configuration for input files.
type DataConfig struct {
	Dir       string `mapstructure:"dir" validate:"required"`
	Ratings   string `mapstructure:"ratings" validate:"required"`
	Movies    string `mapstructure:"movies" validate:"required"`
	Links     string `mapstructure:"links" validate:"required"`
	Tags      string `mapstructure:"tags" validate:"required"`
	Separator string `mapstructure:"separator" validate:"len=1"`
}

// Path resolves a file name against the data directory.
func (config *DataConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(config.Dir, name)
}

func (config *DataConfig) SeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(config.Separator)
	return r
}

// SplitConfig is the configuration for the train/validation/test split.
type SplitConfig struct {
	Weights []float64 `mapstructure:"weights" validate:"len=3,dive,gte=0"`
	Seed    int64     `mapstructure:"seed"`
}

// SearchConfig is the configuration for hyper-parameter search.
type SearchConfig struct {
	NEpochs int       `mapstructure:"n_epochs" validate:"gt=0"`
	Ranks   []int     `mapstructure:"ranks" validate:"required,min=1,dive,gt=0"`
	Regs    []float32 `mapstructure:"regs" validate:"required,min=1,dive,gt=0"`
	Seed    int64     `mapstructure:"seed"`
	Jobs    int       `mapstructure:"jobs" validate:"gt=0"`
	FitJobs int       `mapstructure:"fit_jobs" validate:"gt=0"`
}

func (config *SearchConfig) GetFitConfig() *cf.FitConfig {
	return cf.NewFitConfig().SetJobs(config.FitJobs)
}

func (config *SearchConfig) GetSearchConfig() *cf.SearchConfig {
	return &cf.SearchConfig{Seed: config.Seed, Jobs: config.Jobs}
}

// RecommendConfig is the configuration for recommendations of a single user.
type RecommendConfig struct {
	UserId    int32   `mapstructure:"user_id"`
	Threshold float32 `mapstructure:"threshold"`
	TopK      int     `mapstructure:"top_k" validate:"gte=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:       ".",
			Ratings:   "ratings.csv",
			Movies:    "movies.csv",
			Links:     "links.csv",
			Tags:      "tags.csv",
			Separator: ",",
		},
		Split: SplitConfig{
			Weights: []float64{0.6, 0.2, 0.2},
			Seed:    0,
		},
		Search: SearchConfig{
			NEpochs: 10,
			Ranks:   []int{6, 8, 10, 12},
			Regs:    []float32{0.05, 0.1, 0.2, 0.4, 0.8},
			Seed:    0,
			Jobs:    1,
			FitJobs: runtime.NumCPU(),
		},
		Recommend: RecommendConfig{
			UserId:    12,
			Threshold: 0,
			TopK:      20,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [data]
	v.SetDefault("data.dir", defaultConfig.Data.Dir)
	v.SetDefault("data.ratings", defaultConfig.Data.Ratings)
	v.SetDefault("data.movies", defaultConfig.Data.Movies)
	v.SetDefault("data.links", defaultConfig.Data.Links)
	v.SetDefault("data.tags", defaultConfig.Data.Tags)
	v.SetDefault("data.separator", defaultConfig.Data.Separator)
	// [split]
	v.SetDefault("split.weights", defaultConfig.Split.Weights)
	v.SetDefault("split.seed", defaultConfig.Split.Seed)
	// [search]
	v.SetDefault("search.n_epochs", defaultConfig.Search.NEpochs)
	v.SetDefault("search.ranks", defaultConfig.Search.Ranks)
	v.SetDefault("search.regs", defaultConfig.Search.Regs)
	v.SetDefault("search.seed", defaultConfig.Search.Seed)
	v.SetDefault("search.jobs", defaultConfig.Search.Jobs)
	v.SetDefault("search.fit_jobs", defaultConfig.Search.FitJobs)
	// [recommend]
	v.SetDefault("recommend.user_id", defaultConfig.Recommend.UserId)
	v.SetDefault("recommend.threshold", defaultConfig.Recommend.Threshold)
	v.SetDefault("recommend.top_k", defaultConfig.Recommend.TopK)
}

// bindEnv lets GORSE_ALS_<SECTION>_<KEY> override every key, e.g. GORSE_ALS_SEARCH_RANKS="6,8".
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("GORSE_ALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// stringToSliceHookFunc decodes a list written as a single string, e.g. "6,8" or "6 8",
// into a slice of ints, floats or strings.
func stringToSliceHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
			return data, nil
		}
		fields := strings.FieldsFunc(reflect.ValueOf(data).String(), func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		slice := reflect.MakeSlice(t, 0, len(fields))
		for _, field := range fields {
			elem := reflect.New(t.Elem()).Elem()
			switch elem.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				v, err := strconv.ParseInt(field, 10, elem.Type().Bits())
				if err != nil {
					return nil, errors.Annotatef(err, "cannot parse %q as %v", field, t.Elem())
				}
				elem.SetInt(v)
			case reflect.Float32, reflect.Float64:
				v, err := strconv.ParseFloat(field, elem.Type().Bits())
				if err != nil {
					return nil, errors.Annotatef(err, "cannot parse %q as %v", field, t.Elem())
				}
				elem.SetFloat(v)
			case reflect.String:
				elem.SetString(field)
			default:
				return nil, errors.NotSupportedf("list of %v", t.Elem())
			}
			slice = reflect.Append(slice, elem)
		}
		return slice.Interface(), nil
	}
}

// LoadConfig loads configuration from a TOML file. An empty path loads defaults and
// environment variables only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	bindEnv(v)
	if path != "" {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "failed to read config %s", path)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToSliceHookFunc(),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks field constraints and that split weights are not all zero.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Annotate(err, "invalid config")
	}
	var sum float64
	for _, w := range config.Split.Weights {
		sum += w
	}
	if sum <= 0 {
		return errors.NotValidf("split weights %v", config.Split.Weights)
	}
	return nil
}
