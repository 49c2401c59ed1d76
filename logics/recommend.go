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

package logics

import (
	"sort"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/gorse-als/base/log"
	"github.com/gorse-io/gorse-als/dataset"
	"github.com/gorse-io/gorse-als/model/cf"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"modernc.org/mathutil"
)

// DefaultThreshold is the score a prediction must exceed to be recommended.
const DefaultThreshold float32 = 0

type Recommendation struct {
	ItemId     int32
	Title      string
	Genres     []string
	Prediction float32
}

// RatedMovie is a rating given by a user joined with the movie.
type RatedMovie struct {
	ItemId int32
	Title  string
	Genres []string
	Rating float32
}

type Recommender struct {
	model     cf.MatrixFactorization
	threshold float32
}

func NewRecommender(m cf.MatrixFactorization, threshold float32) *Recommender {
	return &Recommender{model: m, threshold: threshold}
}

func (r *Recommender) Threshold() float32 {
	return r.threshold
}

// Recommend scores every item in ratings the user has not rated, keeps the predictions
// above the threshold, joins them with movies and sorts them by prediction in descending
// order. Items the model cannot score and items missing from movies are dropped. Equal
// predictions keep the order in which items first appear in ratings.
func (r *Recommender) Recommend(userId int32, ratings *dataset.Dataset, movies []dataset.Movie) []Recommendation {
	rated := ratedSet(userId, ratings)
	candidates := lo.Filter(ratings.DistinctItems(), func(itemId int32, _ int) bool {
		return !rated.Contains(itemId)
	})
	catalog := lo.GroupBy(movies, func(movie dataset.Movie) int32 {
		return movie.MovieId
	})
	var (
		recommendations []Recommendation
		declined        int
	)
	for _, itemId := range candidates {
		prediction, ok := r.model.Predict(userId, itemId)
		if !ok || math32.IsNaN(prediction) {
			declined++
			continue
		}
		if prediction <= r.threshold {
			continue
		}
		for _, movie := range catalog[itemId] {
			recommendations = append(recommendations, Recommendation{
				ItemId:     itemId,
				Title:      movie.Title,
				Genres:     movie.Genres,
				Prediction: prediction,
			})
		}
	}
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Prediction > recommendations[j].Prediction
	})
	log.Logger().Debug("recommend movies",
		zap.Int32("user_id", userId),
		zap.Int("n_rated", rated.Cardinality()),
		zap.Int("n_candidates", len(candidates)),
		zap.Int("n_declined", declined),
		zap.Int("n_recommendations", len(recommendations)))
	return recommendations
}

// Rated lists the ratings given by the user joined with movies, in input order. It reads
// every row of ratings, so given the full table it covers all splits and not only the
// held-out rows scored by Inspect.
func (r *Recommender) Rated(userId int32, ratings *dataset.Dataset, movies []dataset.Movie) []RatedMovie {
	catalog := lo.GroupBy(movies, func(movie dataset.Movie) int32 {
		return movie.MovieId
	})
	var result []RatedMovie
	for _, rating := range ratings.UserRatings(userId) {
		for _, movie := range catalog[rating.ItemId] {
			result = append(result, RatedMovie{
				ItemId: rating.ItemId,
				Title:  movie.Title,
				Genres: movie.Genres,
				Rating: rating.Rating,
			})
		}
	}
	return result
}

// Inspect predicts the rows of a user, typically held out from training, and sorts them
// by prediction in descending order.
func (r *Recommender) Inspect(userId int32, rows []dataset.Rating) []cf.Prediction {
	predictions := r.model.Transform(lo.Filter(rows, func(row dataset.Rating, _ int) bool {
		return row.UserId == userId
	}))
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Prediction > predictions[j].Prediction
	})
	return predictions
}

// Top returns the first n recommendations. Non-positive n keeps all of them.
func Top(recommendations []Recommendation, n int) []Recommendation {
	if n <= 0 {
		return recommendations
	}
	return recommendations[:mathutil.Min(n, len(recommendations))]
}

func ratedSet(userId int32, ratings *dataset.Dataset) mapset.Set[int32] {
	return mapset.NewThreadUnsafeSet(lo.Map(ratings.UserRatings(userId), func(r dataset.Rating, _ int) int32 {
		return r.ItemId
	})...)
}
