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
	"strconv"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticDataset(n int) *Dataset {
	d := NewDataset(nil, nil)
	for i := 0; i < n; i++ {
		d.AddRating(Rating{UserId: int32(i % 17), ItemId: int32(i % 23), Rating: float32(i%5) + 1})
	}
	return d
}

func TestRandomSplit(t *testing.T) {
	d := syntheticDataset(1000)
	splits, err := RandomSplit(d, []float64{0.6, 0.2, 0.2}, 0)
	require.NoError(t, err)
	assert.Len(t, splits, 3)
	// disjoint and covering
	assert.Equal(t, d.Count(), lo.SumBy(splits, func(s *Dataset) int { return s.Count() }))
	for _, s := range splits {
		assert.Same(t, d.GetUserDict(), s.GetUserDict())
		assert.Same(t, d.GetItemDict(), s.GetItemDict())
		assert.NotZero(t, s.Count())
	}
	assert.InDelta(t, 600, splits[0].Count(), 60)
	assert.InDelta(t, 200, splits[1].Count(), 40)

	// every row lands in exactly one split, order preserved
	var merged []Rating
	for _, s := range splits {
		merged = append(merged, s.GetRatings()...)
	}
	assert.ElementsMatch(t, d.GetRatings(), merged)

	// dense indices agree with the shared dictionaries
	for _, s := range splits {
		for i, r := range s.GetRatings() {
			assert.Equal(t, d.GetUserDict().Index(r.UserId), s.GetUserIndices()[i])
			assert.Equal(t, d.GetItemDict().Index(r.ItemId), s.GetItemIndices()[i])
		}
	}
}

func TestRandomSplitOrder(t *testing.T) {
	d := NewDataset(nil, nil)
	for i := 0; i < 100; i++ {
		d.AddRating(Rating{UserId: int32(i), ItemId: 0, Rating: 1})
	}
	splits, err := RandomSplit(d, []float64{1, 1}, 42)
	require.NoError(t, err)
	for _, s := range splits {
		ids := lo.Map(s.GetRatings(), func(r Rating, _ int) int32 { return r.UserId })
		assert.IsIncreasing(t, ids)
	}
}

func TestRandomSplitDeterministic(t *testing.T) {
	d := syntheticDataset(500)
	a, err := RandomSplit(d, []float64{6, 2, 2}, 7)
	require.NoError(t, err)
	b, err := RandomSplit(d, []float64{0.6, 0.2, 0.2}, 7)
	require.NoError(t, err)
	c, err := RandomSplit(d, []float64{0.6, 0.2, 0.2}, 8)
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].GetRatings(), b[i].GetRatings(), strconv.Itoa(i))
	}
	assert.NotEqual(t, a[0].GetRatings(), c[0].GetRatings())
}

func TestRandomSplitWeights(t *testing.T) {
	d := syntheticDataset(50)
	splits, err := RandomSplit(d, []float64{1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, splits[0].Count())
	assert.Zero(t, splits[1].Count())

	_, err = RandomSplit(d, nil, 0)
	assert.Error(t, err)
	_, err = RandomSplit(d, []float64{0.5, -0.1}, 0)
	assert.Error(t, err)
	_, err = RandomSplit(d, []float64{0, 0}, 0)
	assert.Error(t, err)
	_, err = RandomSplit(NewDataset(nil, nil), []float64{0.5, 0.5}, 0)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
