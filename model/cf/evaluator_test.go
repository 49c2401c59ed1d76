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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSE(t *testing.T) {
	score, err := RMSE([]Prediction{
		{UserId: 1, ItemId: 1, Rating: 4, Prediction: 3.5},
		{UserId: 1, ItemId: 2, Rating: 3, Prediction: 3},
	})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.125), score, 1e-9)

	score, err = RMSE([]Prediction{{Rating: 5, Prediction: 5}})
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestRMSEExcludesAbsent(t *testing.T) {
	score, err := RMSE([]Prediction{
		{Rating: 4, Prediction: 2},
		{Rating: 1, Prediction: float32(math.NaN())},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, score)
}

func TestRMSEEmpty(t *testing.T) {
	_, err := RMSE(nil)
	assert.ErrorIs(t, err, ErrEmptyPredictions)
	_, err = RMSE([]Prediction{{Rating: 1, Prediction: float32(math.NaN())}})
	assert.ErrorIs(t, err, ErrEmptyPredictions)
}
