// Copyright 2020 gorse Project Authors
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

// FreqDict maps sparse ids to dense indices in insertion order and counts occurrences.
type FreqDict[T comparable] struct {
	si  map[T]int32
	is  []T
	cnt []int
}

func NewFreqDict[T comparable]() *FreqDict[T] {
	return &FreqDict[T]{si: map[T]int32{}}
}

func (d *FreqDict[T]) Count() int {
	return len(d.is)
}

// Id returns the index of s, adding it if needed, and increases its frequency.
func (d *FreqDict[T]) Id(s T) int32 {
	y := d.NotCount(s)
	d.cnt[y]++
	return y
}

// NotCount returns the index of s, adding it if needed, without touching its frequency.
func (d *FreqDict[T]) NotCount(s T) int32 {
	if y, ok := d.si[s]; ok {
		return y
	}
	y := int32(len(d.is))
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 0)
	return y
}

// Index returns the index of s or -1.
func (d *FreqDict[T]) Index(s T) int32 {
	if y, ok := d.si[s]; ok {
		return y
	}
	return -1
}

func (d *FreqDict[T]) Value(id int32) (s T, ok bool) {
	if id < 0 || int(id) >= len(d.is) {
		return s, false
	}
	return d.is[id], true
}

func (d *FreqDict[T]) Freq(id int32) int {
	if id < 0 || int(id) >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}
