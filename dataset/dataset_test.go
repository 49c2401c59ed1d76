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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratingsTable(rows ...[]string) *Table {
	return NewTable("ratings", []string{"userId", "movieId", "rating", "timestamp"}, rows)
}

func TestNormalizeRatings(t *testing.T) {
	d, err := NormalizeRatings(ratingsTable(
		[]string{"1", "31", "2.5", "1260759144"},
		[]string{" 1 ", "1029", "3", "1260759179"},
		[]string{"7", "31", "4.0", "1260759182"},
	))
	require.NoError(t, err)
	assert.Equal(t, []Rating{
		{UserId: 1, ItemId: 31, Rating: 2.5},
		{UserId: 1, ItemId: 1029, Rating: 3},
		{UserId: 7, ItemId: 31, Rating: 4},
	}, d.GetRatings())
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 2, d.CountUsers())
	assert.Equal(t, 2, d.CountItems())
	assert.Equal(t, []int32{0, 0, 1}, d.GetUserIndices())
	assert.Equal(t, []int32{0, 1, 0}, d.GetItemIndices())
	assert.Equal(t, [][]int32{{0, 1}, {2}}, d.GetUserFeedback())
	assert.Equal(t, [][]int32{{0, 2}, {1}}, d.GetItemFeedback())
	assert.Equal(t, 2, d.GetItemDict().Freq(0))
	assert.Equal(t, []int32{31, 1029}, d.DistinctItems())
	assert.Equal(t, []Rating{{UserId: 7, ItemId: 31, Rating: 4}}, d.UserRatings(7))
	assert.Empty(t, d.UserRatings(8))
}

func TestNormalizeRatingsErrors(t *testing.T) {
	cases := []struct {
		row    []string
		column string
		value  string
	}{
		{[]string{"1.0", "31", "2.5", "0"}, "userId", "1.0"},
		{[]string{"1", "abc", "2.5", "0"}, "movieId", "abc"},
		{[]string{"1", "31", "", "0"}, "rating", ""},
		{[]string{"1", "31", "NaN", "0"}, "rating", "NaN"},
		{[]string{"1", "31", "+Inf", "0"}, "rating", "+Inf"},
		{[]string{"3000000000", "31", "1", "0"}, "userId", "3000000000"},
	}
	for _, c := range cases {
		_, err := NormalizeRatings(ratingsTable([]string{"1", "1", "1", "0"}, c.row))
		var parseError *ParseError
		if assert.ErrorAs(t, err, &parseError, c.value) {
			assert.Equal(t, 2, parseError.Row)
			assert.Equal(t, c.column, parseError.Column)
			assert.Equal(t, c.value, parseError.Value)
			assert.Equal(t, "ratings", parseError.Table)
		}
	}

	_, err := NormalizeRatings(NewTable("ratings", []string{"userId", "movieId"}, nil))
	assert.ErrorContains(t, err, `column "rating"`)
}

func TestNormalizeRatingsEmpty(t *testing.T) {
	d, err := NormalizeRatings(ratingsTable())
	require.NoError(t, err)
	assert.Zero(t, d.Count())
	assert.Empty(t, d.DistinctItems())
}
