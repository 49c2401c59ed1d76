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

	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

const (
	ErrEmptyPredictions = errors.ConstError("no predictions to evaluate")
)

// Prediction is a rating row paired with the model's estimate. A NaN prediction
// means the row could not be predicted.
type Prediction struct {
	UserId     int32
	ItemId     int32
	Rating     float32
	Prediction float32
}

// RMSE is the root mean square error between ratings and predictions. Rows without a
// prediction are excluded from both the sum and the count.
//
//	RMSE = \sqrt{ \frac{1}{|T|} \sum_{(u,i) \in T} (r_{ui} - \hat{r}_{ui})^2 }
func RMSE(predictions []Prediction) (float64, error) {
	var (
		sum   float64
		count int
	)
	for _, p := range predictions {
		if math32.IsNaN(p.Prediction) {
			continue
		}
		diff := float64(p.Rating) - float64(p.Prediction)
		sum += diff * diff
		count++
	}
	if count == 0 {
		return 0, errors.Trace(ErrEmptyPredictions)
	}
	return math.Sqrt(sum / float64(count)), nil
}
