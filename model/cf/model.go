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
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/gorse-io/gorse-als/base/log"
	"github.com/gorse-io/gorse-als/base/progress"
	"github.com/gorse-io/gorse-als/common/floats"
	"github.com/gorse-io/gorse-als/common/parallel"
	"github.com/gorse-io/gorse-als/dataset"
	"github.com/gorse-io/gorse-als/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type FitConfig struct {
	Jobs int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{Jobs: 1}
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

type MatrixFactorization interface {
	// SetParams sets hyper-parameters.
	SetParams(params model.Params)
	// GetParams returns hyper-parameters.
	GetParams() model.Params
	// Predict the rating given by a user to an item. It returns false if the user or
	// the item has no rating in the train set.
	Predict(userId, itemId int32) (float32, bool)
	// Transform predicts every row and drops the rows that cannot be predicted.
	Transform(rows []dataset.Rating) []Prediction
	// GetUserIndex returns user index.
	GetUserIndex() *dataset.FreqDict[int32]
	// GetItemIndex returns item index.
	GetItemIndex() *dataset.FreqDict[int32]
	// IsUserPredictable returns false if user has no feedback and its embedding vector never be trained.
	IsUserPredictable(userIndex int32) bool
	// IsItemPredictable returns false if item has no feedback and its embedding vector never be trained.
	IsItemPredictable(itemIndex int32) bool
	// GetUserFactor returns latent factor of a user.
	GetUserFactor(userIndex int32) []float32
	// GetItemFactor returns latent factor of an item.
	GetItemFactor(itemIndex int32) []float32
}

// Trainer fits a fresh model on a train set.
type Trainer func(ctx context.Context, trainSet *dataset.Dataset, params model.Params) (MatrixFactorization, error)

// NewALSTrainer returns a Trainer fitting ALS models.
func NewALSTrainer(config *FitConfig) Trainer {
	return func(ctx context.Context, trainSet *dataset.Dataset, params model.Params) (MatrixFactorization, error) {
		als := NewALS(params)
		if err := als.Fit(ctx, trainSet, config); err != nil {
			return nil, errors.Trace(err)
		}
		return als, nil
	}
}

type BaseMatrixFactorization struct {
	model.BaseModel
	UserIndex       *dataset.FreqDict[int32]
	ItemIndex       *dataset.FreqDict[int32]
	UserPredictable *bitset.BitSet
	ItemPredictable *bitset.BitSet
	// Model parameters
	UserFactor [][]float32 // x_u
	ItemFactor [][]float32 // y_i
}

func (baseModel *BaseMatrixFactorization) Init(trainSet *dataset.Dataset) {
	baseModel.UserIndex = trainSet.GetUserDict()
	baseModel.ItemIndex = trainSet.GetItemDict()
	// set user trained flags
	baseModel.UserPredictable = bitset.New(uint(baseModel.UserIndex.Count()))
	for userIndex, rows := range trainSet.GetUserFeedback() {
		if len(rows) > 0 {
			baseModel.UserPredictable.Set(uint(userIndex))
		}
	}
	// set item trained flags
	baseModel.ItemPredictable = bitset.New(uint(baseModel.ItemIndex.Count()))
	for itemIndex, rows := range trainSet.GetItemFeedback() {
		if len(rows) > 0 {
			baseModel.ItemPredictable.Set(uint(itemIndex))
		}
	}
}

func (baseModel *BaseMatrixFactorization) GetUserIndex() *dataset.FreqDict[int32] {
	return baseModel.UserIndex
}

func (baseModel *BaseMatrixFactorization) GetItemIndex() *dataset.FreqDict[int32] {
	return baseModel.ItemIndex
}

// IsUserPredictable returns false if user has no feedback and its embedding vector never be trained.
func (baseModel *BaseMatrixFactorization) IsUserPredictable(userIndex int32) bool {
	if userIndex < 0 || int(userIndex) >= len(baseModel.UserFactor) {
		return false
	}
	return baseModel.UserPredictable.Test(uint(userIndex))
}

// IsItemPredictable returns false if item has no feedback and its embedding vector never be trained.
func (baseModel *BaseMatrixFactorization) IsItemPredictable(itemIndex int32) bool {
	if itemIndex < 0 || int(itemIndex) >= len(baseModel.ItemFactor) {
		return false
	}
	return baseModel.ItemPredictable.Test(uint(itemIndex))
}

// GetUserFactor returns the latent factor of a user.
func (baseModel *BaseMatrixFactorization) GetUserFactor(userIndex int32) []float32 {
	return baseModel.UserFactor[userIndex]
}

// GetItemFactor returns the latent factor of an item.
func (baseModel *BaseMatrixFactorization) GetItemFactor(itemIndex int32) []float32 {
	return baseModel.ItemFactor[itemIndex]
}

func (baseModel *BaseMatrixFactorization) Predict(userId, itemId int32) (float32, bool) {
	userIndex := baseModel.UserIndex.Index(userId)
	itemIndex := baseModel.ItemIndex.Index(itemId)
	if !baseModel.IsUserPredictable(userIndex) || !baseModel.IsItemPredictable(itemIndex) {
		return 0, false
	}
	return baseModel.internalPredict(userIndex, itemIndex), true
}

func (baseModel *BaseMatrixFactorization) internalPredict(userIndex, itemIndex int32) float32 {
	return floats.Dot(baseModel.UserFactor[userIndex], baseModel.ItemFactor[itemIndex])
}

func (baseModel *BaseMatrixFactorization) Transform(rows []dataset.Rating) []Prediction {
	predictions := make([]Prediction, 0, len(rows))
	for _, row := range rows {
		if prediction, ok := baseModel.Predict(row.UserId, row.ItemId); ok {
			predictions = append(predictions, Prediction{
				UserId:     row.UserId,
				ItemId:     row.ItemId,
				Rating:     row.Rating,
				Prediction: prediction,
			})
		}
	}
	return predictions
}

// ALS is matrix factorization for explicit feedback by alternating least squares with
// weighted-lambda regularization. It minimizes
//
//	\sum_{(u,i)} (r_{ui} - x_u^T y_i)^2 + reg (\sum_u n_u |x_u|^2 + \sum_i n_i |y_i|^2)
//
// where n_u and n_i are the number of ratings of user u and item i. Each epoch solves
// the normal equations of every user with item factors fixed, then of every item with
// user factors fixed.
//
// Hyper-parameters:
//
//	NFactors    - The number of latent factors (rank). Default is 10.
//	NEpochs     - The maximum number of iterations. Default is 10.
//	Reg         - The strength of regularization. Default is 0.1.
//	RandomState - The seed of initial latent factors. Default is 0.
type ALS struct {
	BaseMatrixFactorization
	// Hyper parameters
	nFactors int
	nEpochs  int
	reg      float32
}

// NewALS creates an ALS model.
func NewALS(params model.Params) *ALS {
	als := new(ALS)
	als.SetParams(params)
	return als
}

// SetParams sets hyper-parameters for the ALS model.
func (als *ALS) SetParams(params model.Params) {
	als.BaseMatrixFactorization.SetParams(params)
	als.nFactors = als.Params.GetInt(model.NFactors, 10)
	als.nEpochs = als.Params.GetInt(model.NEpochs, 10)
	als.reg = als.Params.GetFloat32(model.Reg, 0.1)
}

func (als *ALS) validate() error {
	if als.nFactors <= 0 {
		return errors.NotValidf("%v = %v", model.NFactors, als.nFactors)
	}
	if als.nEpochs <= 0 {
		return errors.NotValidf("%v = %v", model.NEpochs, als.nEpochs)
	}
	if !(als.reg > 0) {
		return errors.NotValidf("%v = %v", model.Reg, als.reg)
	}
	return nil
}

func (als *ALS) Init(trainSet *dataset.Dataset) {
	rng := als.GetRandomGenerator()
	als.UserFactor = rng.UnitMatrix(trainSet.CountUsers(), als.nFactors)
	als.ItemFactor = rng.UnitMatrix(trainSet.CountItems(), als.nFactors)
	als.BaseMatrixFactorization.Init(trainSet)
}

// alsBuffer holds the normal equations of one worker.
type alsBuffer struct {
	a    *mat.SymDense
	b    *mat.VecDense
	x    *mat.VecDense
	y    []float64
	chol mat.Cholesky
}

func newALSBuffer(nFactors int) *alsBuffer {
	return &alsBuffer{
		a: mat.NewSymDense(nFactors, nil),
		b: mat.NewVecDense(nFactors, nil),
		x: mat.NewVecDense(nFactors, nil),
		y: make([]float64, nFactors),
	}
}

// Fit the ALS model. Its task complexity is O(als.nEpochs).
func (als *ALS) Fit(ctx context.Context, trainSet *dataset.Dataset, config *FitConfig) error {
	if err := als.validate(); err != nil {
		return errors.Trace(err)
	}
	if trainSet.Count() == 0 {
		return errors.Trace(dataset.ErrEmptyDataset)
	}
	if config == nil {
		config = NewFitConfig()
	}
	jobs := max(config.Jobs, 1)
	log.Logger().Debug("fit als",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("n_users", trainSet.CountUsers()),
		zap.Int("n_items", trainSet.CountItems()),
		zap.Stringer("params", als.GetParams()),
		zap.Int("jobs", jobs))
	als.Init(trainSet)
	buffers := make([]*alsBuffer, jobs)
	for i := range buffers {
		buffers[i] = newALSBuffer(als.nFactors)
	}
	ratings := trainSet.GetRatings()
	userFeedback, itemFeedback := trainSet.GetUserFeedback(), trainSet.GetItemFeedback()
	userIndices, itemIndices := trainSet.GetUserIndices(), trainSet.GetItemIndices()

	newCtx, span := progress.Start(ctx, "ALS.Fit", als.nEpochs)
	for ep := 1; ep <= als.nEpochs; ep++ {
		fitStart := time.Now()
		// Recompute all user factors: x_u = (Y_u^T Y_u + reg n_u I)^{-1} Y_u^T r_u
		if err := parallel.Parallel(newCtx, len(userFeedback), jobs, func(workerId, userIndex int) error {
			return als.solve(buffers[workerId], userFeedback[userIndex], itemIndices, ratings, als.ItemFactor, als.UserFactor[userIndex])
		}); err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		// Recompute all item factors: y_i = (X_i^T X_i + reg n_i I)^{-1} X_i^T r_i
		if err := parallel.Parallel(newCtx, len(itemFeedback), jobs, func(workerId, itemIndex int) error {
			return als.solve(buffers[workerId], itemFeedback[itemIndex], userIndices, ratings, als.UserFactor, als.ItemFactor[itemIndex])
		}); err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		log.Logger().Debug(fmt.Sprintf("fit als %v/%v", ep, als.nEpochs),
			zap.String("fit_time", time.Since(fitStart).String()))
		span.Add(1)
	}
	span.End()
	return nil
}

// solve updates the factor of one user (or item) given the rows it appears in, the
// counterpart index of every row and the fixed counterpart factors.
func (als *ALS) solve(buf *alsBuffer, rows, counterparts []int32, ratings []dataset.Rating, fixed [][]float32, dst []float32) error {
	if len(rows) == 0 {
		return nil
	}
	buf.a.Zero()
	buf.b.Zero()
	y := mat.NewVecDense(als.nFactors, buf.y)
	for _, row := range rows {
		floats.Widen(buf.y, fixed[counterparts[row]])
		buf.a.SymRankOne(buf.a, 1, y)
		buf.b.AddScaledVec(buf.b, float64(ratings[row].Rating), y)
	}
	lambda := float64(als.reg) * float64(len(rows))
	for f := 0; f < als.nFactors; f++ {
		buf.a.SetSym(f, f, buf.a.At(f, f)+lambda)
	}
	if ok := buf.chol.Factorize(buf.a); !ok {
		return errors.Errorf("normal equations are not positive definite")
	}
	if err := buf.chol.SolveVecTo(buf.x, buf.b); err != nil {
		return errors.Trace(err)
	}
	floats.Narrow(dst, buf.x.RawVector().Data)
	return nil
}
