// Copyright 2024 gorse Project Authors
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

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	v, err := ParseInt[int32](" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
	_, err = ParseInt[int32]("1.0")
	assert.Error(t, err)
	_, err = ParseInt[int32]("abc")
	assert.Error(t, err)
	_, err = ParseInt[int32]("4294967296")
	assert.Error(t, err)
	v64, err := ParseInt[int64]("4294967296")
	require.NoError(t, err)
	assert.Equal(t, int64(4294967296), v64)
}

func TestParseFloat(t *testing.T) {
	v, err := ParseFloat[float32]("3.5")
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), v)
	v, err = ParseFloat[float32]("4")
	require.NoError(t, err)
	assert.Equal(t, float32(4), v)
	_, err = ParseFloat[float32]("four")
	assert.Error(t, err)
	_, err = ParseFloat[float32]("")
	assert.Error(t, err)
}

func TestCheckPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer CheckPanic()
		panic("boom")
	})
}
