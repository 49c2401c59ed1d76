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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMovies(t *testing.T) {
	movies, err := ParseMovies(NewTable("movies", []string{"movieId", "title", "genres"}, [][]string{
		{"1", "Toy Story (1995)", "Adventure|Animation|Children"},
		{"2", "Jumanji (1995)", "Adventure|Children"},
		{"3", "Unknown (2015)", "(no genres listed)"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []Movie{
		{MovieId: 1, Title: "Toy Story (1995)", Genres: []string{"Adventure", "Animation", "Children"}},
		{MovieId: 2, Title: "Jumanji (1995)", Genres: []string{"Adventure", "Children"}},
		{MovieId: 3, Title: "Unknown (2015)"},
	}, movies)

	movies, err = ParseMovies(NewTable("movies", []string{"movieId", "title"}, [][]string{{"5", "Heat (1995)"}}))
	require.NoError(t, err)
	assert.Equal(t, []Movie{{MovieId: 5, Title: "Heat (1995)"}}, movies)

	_, err = ParseMovies(NewTable("movies", []string{"movieId", "title"}, [][]string{{"x", "Heat (1995)"}}))
	var parseError *ParseError
	assert.ErrorAs(t, err, &parseError)
	_, err = ParseMovies(NewTable("movies", []string{"movieId"}, nil))
	assert.Error(t, err)
}

func TestParseLinks(t *testing.T) {
	links, err := ParseLinks(NewTable("links", []string{"movieId", "imdbId", "tmdbId"}, [][]string{
		{"1", "0114709", "862"},
		{"2", "0113497", ""},
	}))
	require.NoError(t, err)
	assert.Equal(t, []Link{
		{MovieId: 1, ImdbId: "0114709", TmdbId: 862},
		{MovieId: 2, ImdbId: "0113497"},
	}, links)

	_, err = ParseLinks(NewTable("links", []string{"movieId", "imdbId", "tmdbId"}, [][]string{{"1", "0114709", "8.5"}}))
	var parseError *ParseError
	if assert.ErrorAs(t, err, &parseError) {
		assert.Equal(t, "tmdbId", parseError.Column)
	}
}

func TestParseTags(t *testing.T) {
	tags, err := ParseTags(NewTable("tags", []string{"userId", "movieId", "tag", "timestamp"}, [][]string{
		{"15", "339", "sandra 'boring' bullock", "1138537770"},
		{"15", "1955", "dentist", "2006-01-29 12:29:30"},
	}))
	require.NoError(t, err)
	assert.Len(t, tags, 2)
	assert.Equal(t, Tag{UserId: 15, MovieId: 339, Tag: "sandra 'boring' bullock", Timestamp: time.Unix(1138537770, 0).UTC()}, tags[0])
	assert.Equal(t, 2006, tags[1].Timestamp.Year())
	assert.Equal(t, time.January, tags[1].Timestamp.Month())

	_, err = ParseTags(NewTable("tags", []string{"userId", "movieId", "tag", "timestamp"}, [][]string{{"15", "339", "x", "yesterday"}}))
	var parseError *ParseError
	if assert.ErrorAs(t, err, &parseError) {
		assert.Equal(t, "timestamp", parseError.Column)
		assert.Equal(t, 1, parseError.Row)
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("829000000")
	require.NoError(t, err)
	assert.Equal(t, int64(829000000), ts.Unix())
}
