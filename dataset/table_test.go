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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	text := "movieId,title,genres\n" +
		"1,Toy Story (1995),Adventure|Animation\n" +
		"\n" +
		"11,\"American President, The (1995)\",Comedy|Drama|Romance\n" +
		"12,\"Dracula: Dead and Loving It \"\"Twice\"\"\",Comedy\n" +
		"13,\"Two\nLines\",(no genres listed)\n"
	table, err := ReadCSV("movies", strings.NewReader(text), ',')
	require.NoError(t, err)
	assert.Equal(t, "movies", table.Name())
	assert.Equal(t, []string{"movieId", "title", "genres"}, table.Columns())
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, []string{"1", "Toy Story (1995)", "Adventure|Animation"}, table.Row(0))
	assert.Equal(t, "American President, The (1995)", table.Row(1)[1])
	assert.Equal(t, `Dracula: Dead and Loving It "Twice"`, table.Row(2)[1])
	assert.Equal(t, "Two\nLines", table.Row(3)[1])
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV("ratings", strings.NewReader(""), ',')
	assert.ErrorContains(t, err, "missing header")
	_, err = ReadCSV("ratings", strings.NewReader("userId,movieId,rating\n1,2,3\n1,2\n"), ',')
	assert.ErrorContains(t, err, "line 3 has 2 fields, expected 3")
	_, err = ReadCSV("movies", strings.NewReader("movieId,title\n1,\"open\n"), ',')
	assert.ErrorContains(t, err, "unterminated")
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.tsv")
	err := os.WriteFile(path, []byte("\ufeffuserId\tmovieId\trating\n1\t2\t3.5\n"), 0644)
	require.NoError(t, err)
	table, err := LoadCSV(path, '\t')
	require.NoError(t, err)
	assert.Equal(t, "ratings", table.Name())
	assert.Equal(t, 0, table.ColumnIndex("userId"))
	assert.Equal(t, -1, table.ColumnIndex("timestamp"))
	assert.Equal(t, []string{"1", "2", "3.5"}, table.Row(0))

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), ',')
	assert.Error(t, err)
}

func TestTableSelectAndHead(t *testing.T) {
	table := NewTable("ratings", []string{"userId", "movieId", "rating"}, [][]string{
		{"1", "10", "4"},
		{"2", "20", "3"},
		{"3", "30", "2"},
	})
	projected, err := table.Select("rating", "userId")
	require.NoError(t, err)
	assert.Equal(t, []string{"rating", "userId"}, projected.Columns())
	assert.Equal(t, []string{"4", "1"}, projected.Row(0))
	_, err = table.Select("timestamp")
	assert.ErrorContains(t, err, `column "timestamp" in ratings not found`)

	assert.Equal(t, 2, table.Head(2).Len())
	assert.Equal(t, 3, table.Head(10).Len())
	assert.Equal(t, 0, table.Head(0).Len())
}
