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

package dataset

import (
	"github.com/gorse-io/gorse-als/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// RandomSplit partitions a dataset by weights. Weights are normalized to sum to one.
// Each row, in order, draws one uniform number and joins the first split whose
// cumulative bound exceeds it, so the same seed and input always give the same
// partition. Splits are disjoint, cover the input and keep its order.
func RandomSplit(d *Dataset, weights []float64, seed int64) ([]*Dataset, error) {
	if d.Count() == 0 {
		return nil, errors.Trace(ErrEmptyDataset)
	}
	if len(weights) == 0 {
		return nil, errors.NotValidf("empty split weights")
	}
	for _, w := range weights {
		if w < 0 {
			return nil, errors.NotValidf("negative split weight %v", w)
		}
	}
	sum := lo.Sum(weights)
	if sum <= 0 {
		return nil, errors.NotValidf("split weights summing to %v", sum)
	}
	bounds := make([]float64, len(weights))
	var acc float64
	for i, w := range weights {
		acc += w / sum
		bounds[i] = acc
	}
	bounds[len(bounds)-1] = 1

	rng := base.NewRandomGenerator(seed)
	rows := make([][]int, len(weights))
	for i := 0; i < d.Count(); i++ {
		x := rng.Float64()
		j := 0
		for j < len(bounds)-1 && x >= bounds[j] {
			j++
		}
		rows[j] = append(rows[j], i)
	}
	return lo.Map(rows, func(r []int, _ int) *Dataset {
		return d.subset(r)
	}), nil
}
