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
	"context"
	"fmt"
	"time"

	"github.com/gorse-io/gorse-als/dataset"
	"github.com/gorse-io/gorse-als/logics"
	"github.com/gorse-io/gorse-als/model/cf"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

var splitNames = []string{"train", "validation", "test"}

// Report is the outcome of a run.
type Report struct {
	RunId           string
	NRatings        int
	NMovies         int
	NLinks          int
	NTags           int
	SplitCounts     []int // train, validation, test
	Search          *cf.SearchResult
	TrainRMSE       float64
	ValidationRMSE  float64
	TestRMSE        float64
	Runtime         time.Duration
	UserId          int32
	Rated           []logics.RatedMovie // user's ratings from every split
	HeldOut         []cf.Prediction     // user's test split rows scored by the best model
	Recommendations []logics.Recommendation
}

// Run loads the input tables, splits ratings, searches ALS hyper-parameters on the train
// and validation sets, evaluates the best model on the test set and recommends movies to
// the configured user.
func Run(ctx context.Context, s *Session) (*Report, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	cfg := s.config
	report := &Report{RunId: s.runId, UserId: cfg.Recommend.UserId}
	ctx, span := s.tracer.Start(ctx, "Run", 4)
	fail := func(err error) (*Report, error) {
		span.Fail(err)
		return nil, errors.Trace(err)
	}

	// load and normalize
	ratings, movies, err := s.loadAll(report)
	if err != nil {
		return fail(err)
	}
	span.Add(1)

	// split
	splits, err := dataset.RandomSplit(ratings, cfg.Split.Weights, cfg.Split.Seed)
	if err != nil {
		return fail(err)
	}
	for i, split := range splits {
		if split.Count() == 0 {
			return fail(errors.Annotatef(dataset.ErrEmptyDataset, "%s split", splitNames[i]))
		}
		report.SplitCounts = append(report.SplitCounts, split.Count())
	}
	train, validation, test := splits[0], splits[1], splits[2]
	s.logger.Info(fmt.Sprintf("The number of ratings in each set: %d, %d, %d",
		train.Count(), validation.Count(), test.Count()))
	span.Add(1)

	// search
	trainer, err := s.Trainer()
	if err != nil {
		return fail(err)
	}
	start := time.Now()
	result, err := cf.GridSearch(ctx, trainer, train, validation,
		cfg.Search.NEpochs, cfg.Search.Regs, cfg.Search.Ranks, cfg.Search.GetSearchConfig())
	if err != nil {
		return fail(err)
	}
	report.Search = result
	report.ValidationRMSE = result.BestScore
	if report.TrainRMSE, err = cf.RMSE(result.BestModel.Transform(train.GetRatings())); err != nil {
		return fail(errors.Annotate(err, "train set"))
	}
	s.logger.Info(fmt.Sprintf("The best model has %v latent factors and regularization = %v",
		result.BestRank, result.BestReg))
	s.logger.Info(fmt.Sprintf("training RMSE is %v; validation RMSE is %v",
		report.TrainRMSE, report.ValidationRMSE))
	report.Runtime = time.Since(start)
	s.logger.Info(fmt.Sprintf("Total Runtime: %.2f seconds", report.Runtime.Seconds()))
	if report.TestRMSE, err = cf.RMSE(result.BestModel.Transform(test.GetRatings())); err != nil {
		return fail(errors.Annotate(err, "test set"))
	}
	s.logger.Info(fmt.Sprintf("The testing RMSE is %v", report.TestRMSE))
	span.Add(1)

	// recommend
	recommender := logics.NewRecommender(result.BestModel, cfg.Recommend.Threshold)
	report.Rated = recommender.Rated(report.UserId, ratings, movies)
	report.HeldOut = recommender.Inspect(report.UserId, test.GetRatings())
	report.Recommendations = logics.Top(recommender.Recommend(report.UserId, ratings, movies), cfg.Recommend.TopK)
	s.logger.Info("recommend movies",
		zap.Int32("user_id", report.UserId),
		zap.Float32("threshold", recommender.Threshold()),
		zap.Int("n_rated", len(report.Rated)),
		zap.Int("n_held_out", len(report.HeldOut)),
		zap.Int("n_recommendations", len(report.Recommendations)))
	span.Add(1)
	span.End()
	return report, nil
}

func (s *Session) loadAll(report *Report) (*dataset.Dataset, []dataset.Movie, error) {
	ratingsTable, err := s.Load(Ratings)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	ratings, err := dataset.NormalizeRatings(ratingsTable)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	moviesTable, err := s.Load(Movies)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	movies, err := dataset.ParseMovies(moviesTable)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	linksTable, err := s.Load(Links)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	links, err := dataset.ParseLinks(linksTable)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	tagsTable, err := s.Load(Tags)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	tags, err := dataset.ParseTags(tagsTable)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	report.NRatings, report.NMovies, report.NLinks, report.NTags = ratings.Count(), len(movies), len(links), len(tags)
	s.logger.Info("load dataset",
		zap.Int("n_ratings", ratings.Count()),
		zap.Int("n_users", ratings.CountUsers()),
		zap.Int("n_items", ratings.CountItems()),
		zap.Int("n_movies", len(movies)),
		zap.Int("n_links", len(links)),
		zap.Int("n_tags", len(tags)))
	return ratings, movies, nil
}

// TableSummary is the head and size of an input table.
type TableSummary struct {
	Kind TableKind
	Len  int
	Head *dataset.Table
}

// Describe loads every input table and returns its first n rows.
func Describe(s *Session, n int) ([]TableSummary, error) {
	summaries := make([]TableSummary, 0, len(TableKinds))
	for _, kind := range TableKinds {
		table, err := s.Load(kind)
		if err != nil {
			return nil, errors.Trace(err)
		}
		summaries = append(summaries, TableSummary{Kind: kind, Len: table.Len(), Head: table.Head(n)})
	}
	return summaries, nil
}
