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
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gorse-io/gorse-als/common/util"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	ErrEmptyDataset = errors.ConstError("dataset is empty")
)

// Rating is a normalized rating row.
type Rating struct {
	UserId int32
	ItemId int32
	Rating float32
}

// ParseError reports a field that cannot be cast to its column type.
type ParseError struct {
	Table  string
	Row    int // 1-based data row, the header excluded
	Column string
	Value  string
	Type   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d: cannot parse %s %q as %s: %v", e.Table, e.Row, e.Column, e.Value, e.Type, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Dataset is a set of ratings. Rows keep their input order. Datasets produced by
// RandomSplit share user and item dictionaries with their parent.
type Dataset struct {
	userDict     *FreqDict[int32]
	itemDict     *FreqDict[int32]
	ratings      []Rating
	userIndices  []int32
	itemIndices  []int32
	userFeedback [][]int32
	itemFeedback [][]int32
}

func NewDataset(userDict, itemDict *FreqDict[int32]) *Dataset {
	if userDict == nil {
		userDict = NewFreqDict[int32]()
	}
	if itemDict == nil {
		itemDict = NewFreqDict[int32]()
	}
	return &Dataset{userDict: userDict, itemDict: itemDict}
}

// AddRating appends a rating and registers its user and item.
func (d *Dataset) AddRating(r Rating) {
	d.add(r, d.userDict.Id(r.UserId), d.itemDict.Id(r.ItemId))
}

func (d *Dataset) add(r Rating, userIndex, itemIndex int32) {
	row := int32(len(d.ratings))
	d.ratings = append(d.ratings, r)
	d.userIndices = append(d.userIndices, userIndex)
	d.itemIndices = append(d.itemIndices, itemIndex)
	for int(userIndex) >= len(d.userFeedback) {
		d.userFeedback = append(d.userFeedback, nil)
	}
	for int(itemIndex) >= len(d.itemFeedback) {
		d.itemFeedback = append(d.itemFeedback, nil)
	}
	d.userFeedback[userIndex] = append(d.userFeedback[userIndex], row)
	d.itemFeedback[itemIndex] = append(d.itemFeedback[itemIndex], row)
}

// subset builds a dataset from the given rows, sharing dictionaries.
func (d *Dataset) subset(rows []int) *Dataset {
	s := NewDataset(d.userDict, d.itemDict)
	s.ratings = make([]Rating, 0, len(rows))
	for _, i := range rows {
		s.add(d.ratings[i], d.userIndices[i], d.itemIndices[i])
	}
	return s
}

func (d *Dataset) Count() int {
	return len(d.ratings)
}

// CountUsers returns the number of users in the shared dictionary.
func (d *Dataset) CountUsers() int {
	return d.userDict.Count()
}

// CountItems returns the number of items in the shared dictionary.
func (d *Dataset) CountItems() int {
	return d.itemDict.Count()
}

func (d *Dataset) GetUserDict() *FreqDict[int32] {
	return d.userDict
}

func (d *Dataset) GetItemDict() *FreqDict[int32] {
	return d.itemDict
}

func (d *Dataset) GetRatings() []Rating {
	return d.ratings
}

// GetUserIndices returns the dense user index of every row.
func (d *Dataset) GetUserIndices() []int32 {
	return d.userIndices
}

// GetItemIndices returns the dense item index of every row.
func (d *Dataset) GetItemIndices() []int32 {
	return d.itemIndices
}

// GetUserFeedback returns, for every dense user index, the rows rated by the user.
// Users only known from other splits have no rows.
func (d *Dataset) GetUserFeedback() [][]int32 {
	return d.userFeedback
}

// GetItemFeedback returns, for every dense item index, the rows that rate the item.
func (d *Dataset) GetItemFeedback() [][]int32 {
	return d.itemFeedback
}

// UserRatings returns the ratings given by a user in input order.
func (d *Dataset) UserRatings(userId int32) []Rating {
	userIndex := d.userDict.Index(userId)
	if userIndex < 0 || int(userIndex) >= len(d.userFeedback) {
		return nil
	}
	return lo.Map(d.userFeedback[userIndex], func(row int32, _ int) Rating {
		return d.ratings[row]
	})
}

// DistinctItems returns item ids in order of first appearance.
func (d *Dataset) DistinctItems() []int32 {
	return lo.Uniq(lo.Map(d.ratings, func(r Rating, _ int) int32 {
		return r.ItemId
	}))
}

// NormalizeRatings casts a ratings table to typed rows. Every value must parse strictly:
// ids are integers and ratings finite floats. The first failure aborts normalization.
func NormalizeRatings(t *Table) (*Dataset, error) {
	t, err := t.Select("userId", "movieId", "rating")
	if err != nil {
		return nil, errors.Trace(err)
	}
	d := NewDataset(nil, nil)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		userId, err := util.ParseInt[int32](row[0])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "userId", Value: row[0], Type: "int32", Err: err}
		}
		itemId, err := util.ParseInt[int32](row[1])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "movieId", Value: row[1], Type: "int32", Err: err}
		}
		rating, err := parseRating(row[2])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "rating", Value: row[2], Type: "float32", Err: err}
		}
		d.AddRating(Rating{UserId: userId, ItemId: itemId, Rating: rating})
	}
	return d, nil
}

func parseRating(s string) (float32, error) {
	rating, err := util.ParseFloat[float32](s)
	if err != nil {
		return 0, err
	}
	if math32.IsNaN(rating) || math32.IsInf(rating, 0) {
		return 0, errors.NotValidf("non-finite rating")
	}
	return rating, nil
}
