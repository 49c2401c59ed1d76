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

package cf

import (
	"context"
	"fmt"
	"math"

	"github.com/gorse-io/gorse-als/base/log"
	"github.com/gorse-io/gorse-als/base/progress"
	"github.com/gorse-io/gorse-als/common/parallel"
	"github.com/gorse-io/gorse-als/dataset"
	"github.com/gorse-io/gorse-als/model"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	ErrEmptyGrid = errors.ConstError("empty hyper-parameter grid")
	ErrNoModel   = errors.ConstError("no candidate model could be trained")
)

type SearchConfig struct {
	Seed int64 // random state shared by every candidate
	Jobs int   // number of candidates evaluated concurrently
}

func NewSearchConfig() *SearchConfig {
	return &SearchConfig{Jobs: 1}
}

// Trial is the outcome of one candidate. Score is NaN if Err is set.
type Trial struct {
	Rank  int
	Reg   float32
	Score float64
	Err   error
}

func (t Trial) Params(nEpochs int, seed int64) model.Params {
	return model.Params{
		model.NFactors:    t.Rank,
		model.NEpochs:     nEpochs,
		model.Reg:         t.Reg,
		model.RandomState: seed,
	}
}

// SearchResult contains the return of grid search.
type SearchResult struct {
	BestModel  MatrixFactorization
	BestParams model.Params
	BestRank   int
	BestReg    float32
	BestScore  float64
	BestIndex  int
	Trials     []Trial
}

// GridSearch fits a model for every (rank, reg) pair, ranks in the outer loop, and keeps
// the one with the lowest validation RMSE. Ties keep the earlier candidate. Candidates
// that fail are recorded in the trace and skipped.
func GridSearch(ctx context.Context, trainer Trainer, trainSet, valSet *dataset.Dataset,
	nEpochs int, regs []float32, ranks []int, config *SearchConfig) (*SearchResult, error) {
	if len(ranks) == 0 || len(regs) == 0 {
		return nil, errors.Trace(ErrEmptyGrid)
	}
	if config == nil {
		config = NewSearchConfig()
	}
	trials := lo.FlatMap(ranks, func(rank int, _ int) []Trial {
		return lo.Map(regs, func(reg float32, _ int) Trial {
			return Trial{Rank: rank, Reg: reg, Score: math.NaN()}
		})
	})
	models := make([]MatrixFactorization, len(trials))
	finished := atomic.NewInt64(0)
	log.Logger().Info("start grid search",
		zap.Ints("ranks", ranks),
		zap.Float32s("regs", regs),
		zap.Int("n_epochs", nEpochs),
		zap.Int("n_candidates", len(trials)))

	newCtx, span := progress.Start(ctx, "GridSearch", len(trials))
	err := parallel.Parallel(newCtx, len(trials), config.Jobs, func(_, i int) error {
		trial := &trials[i]
		m, err := trainer(newCtx, trainSet, trial.Params(nEpochs, config.Seed))
		if err == nil {
			trial.Score, err = RMSE(m.Transform(valSet.GetRatings()))
			if err == nil && math.IsNaN(trial.Score) {
				err = errors.New("validation RMSE is NaN")
			}
		}
		if err != nil {
			if ctxErr := newCtx.Err(); ctxErr != nil {
				return ctxErr
			}
			trial.Score, trial.Err = math.NaN(), err
		} else {
			models[i] = m
		}
		done := finished.Inc()
		span.Set(int(done))
		if trial.Err != nil {
			log.Logger().Warn("failed to evaluate candidate",
				zap.Int("rank", trial.Rank),
				zap.Float32("reg", trial.Reg),
				zap.Int64("finished", done),
				zap.Error(trial.Err))
		} else {
			log.Logger().Info(fmt.Sprintf("%v latent factors and regularization = %v: validation RMSE is %v",
				trial.Rank, trial.Reg, trial.Score),
				zap.Int64("finished", done),
				zap.Int("total", len(trials)))
		}
		return nil
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()

	// first-seen wins: a candidate replaces the best only if strictly better
	bestIndex := lo.Reduce(trials, func(best int, trial Trial, i int) int {
		if trial.Err == nil && (best < 0 || trial.Score < trials[best].Score) {
			return i
		}
		return best
	}, -1)
	if bestIndex < 0 {
		lastErr := trials[len(trials)-1].Err
		return nil, fmt.Errorf("%w: %w", ErrNoModel, lastErr)
	}
	best := trials[bestIndex]
	return &SearchResult{
		BestModel:  models[bestIndex],
		BestParams: best.Params(nEpochs, config.Seed),
		BestRank:   best.Rank,
		BestReg:    best.Reg,
		BestScore:  best.Score,
		BestIndex:  bestIndex,
		Trials:     trials,
	}, nil
}
