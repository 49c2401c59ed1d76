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

package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorse-io/gorse-als/base/log"
	"github.com/gorse-io/gorse-als/base/progress"
	"github.com/gorse-io/gorse-als/config"
	"github.com/gorse-io/gorse-als/dataset"
	"github.com/gorse-io/gorse-als/model/cf"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const ErrSessionClosed = errors.ConstError("session is closed")

// TableKind names one of the input tables.
type TableKind string

const (
	Ratings TableKind = "ratings"
	Movies  TableKind = "movies"
	Links   TableKind = "links"
	Tags    TableKind = "tags"
)

var TableKinds = []TableKind{Ratings, Movies, Links, Tags}

type Option func(s *Session)

// WithListener receives progress of every span started under the session.
func WithListener(listener progress.Listener) Option {
	return func(s *Session) {
		s.listener = listener
	}
}

// Session is the execution handle of a run. It is acquired by Open and must be released
// by Close. Every operation on a closed session fails with ErrSessionClosed.
type Session struct {
	config   *config.Config
	runId    string
	listener progress.Listener
	tracer   *progress.Tracer
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
}

func Open(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	s := &Session{
		config: cfg,
		runId:  uuid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tracer = progress.NewTracer(s.runId, s.listener)
	s.logger = log.WithRun(s.runId)
	s.logger.Info("open session",
		zap.String("data_dir", cfg.Data.Dir),
		zap.Int("jobs", cfg.Search.Jobs),
		zap.Int("fit_jobs", cfg.Search.FitJobs))
	return s, nil
}

// Close releases the session. Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.logger.Info("close session")
	}
}

func (s *Session) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Trace(ErrSessionClosed)
	}
	return nil
}

func (s *Session) RunId() string {
	return s.runId
}

func (s *Session) Config() *config.Config {
	return s.config
}

func (s *Session) Logger() *zap.Logger {
	return s.logger
}

// Progress lists the root spans started by the session.
func (s *Session) Progress() []progress.Progress {
	return s.tracer.List()
}

// Load reads one of the input tables.
func (s *Session) Load(kind TableKind) (*dataset.Table, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var name string
	switch kind {
	case Ratings:
		name = s.config.Data.Ratings
	case Movies:
		name = s.config.Data.Movies
	case Links:
		name = s.config.Data.Links
	case Tags:
		name = s.config.Data.Tags
	default:
		return nil, errors.NotValidf("table kind %q", kind)
	}
	path := s.config.Data.Path(name)
	table, err := dataset.LoadCSV(path, s.config.Data.SeparatorRune())
	if err != nil {
		return nil, errors.Trace(err)
	}
	s.logger.Info("load table",
		zap.String("kind", string(kind)),
		zap.String("path", path),
		zap.Strings("columns", table.Columns()),
		zap.Int("n_rows", table.Len()))
	return table, nil
}

// Trainer returns the ALS trainer bound to the session's fit jobs.
func (s *Session) Trainer() (cf.Trainer, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return cf.NewALSTrainer(s.config.Search.GetFitConfig()), nil
}
