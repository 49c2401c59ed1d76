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
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gorse-io/gorse-als/common/util"
	"github.com/juju/errors"
	"modernc.org/strutil"
)

const noGenres = "(no genres listed)"

type Movie struct {
	MovieId int32
	Title   string
	Genres  []string
}

type Link struct {
	MovieId int32
	ImdbId  string
	TmdbId  int32
}

type Tag struct {
	UserId    int32
	MovieId   int32
	Tag       string
	Timestamp time.Time
}

// ParseMovies casts a movies table. The genres column is optional; genre names are
// interned since a handful of values repeat across every row.
func ParseMovies(t *Table) ([]Movie, error) {
	genresCol := t.ColumnIndex("genres")
	projected, err := t.Select("movieId", "title")
	if err != nil {
		return nil, errors.Trace(err)
	}
	pool := strutil.NewPool()
	movies := make([]Movie, 0, t.Len())
	for i := 0; i < projected.Len(); i++ {
		row := projected.Row(i)
		movieId, err := util.ParseInt[int32](row[0])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "movieId", Value: row[0], Type: "int32", Err: err}
		}
		movie := Movie{MovieId: movieId, Title: strings.TrimSpace(row[1])}
		if genresCol >= 0 {
			if genres := strings.TrimSpace(t.Row(i)[genresCol]); genres != "" && genres != noGenres {
				for _, genre := range strings.Split(genres, "|") {
					movie.Genres = append(movie.Genres, pool.Align(genre))
				}
			}
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

// ParseLinks casts a links table. IMDb ids keep their leading zeros and a missing
// TMDB id becomes 0.
func ParseLinks(t *Table) ([]Link, error) {
	t, err := t.Select("movieId", "imdbId", "tmdbId")
	if err != nil {
		return nil, errors.Trace(err)
	}
	links := make([]Link, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		movieId, err := util.ParseInt[int32](row[0])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "movieId", Value: row[0], Type: "int32", Err: err}
		}
		link := Link{MovieId: movieId, ImdbId: strings.TrimSpace(row[1])}
		if strings.TrimSpace(row[2]) != "" {
			if link.TmdbId, err = util.ParseInt[int32](row[2]); err != nil {
				return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "tmdbId", Value: row[2], Type: "int32", Err: err}
			}
		}
		links = append(links, link)
	}
	return links, nil
}

// ParseTags casts a tags table.
func ParseTags(t *Table) ([]Tag, error) {
	t, err := t.Select("userId", "movieId", "tag", "timestamp")
	if err != nil {
		return nil, errors.Trace(err)
	}
	tags := make([]Tag, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		userId, err := util.ParseInt[int32](row[0])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "userId", Value: row[0], Type: "int32", Err: err}
		}
		movieId, err := util.ParseInt[int32](row[1])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "movieId", Value: row[1], Type: "int32", Err: err}
		}
		timestamp, err := ParseTimestamp(row[3])
		if err != nil {
			return nil, &ParseError{Table: t.Name(), Row: i + 1, Column: "timestamp", Value: row[3], Type: "timestamp", Err: err}
		}
		tags = append(tags, Tag{UserId: userId, MovieId: movieId, Tag: row[2], Timestamp: timestamp})
	}
	return tags, nil
}

// ParseTimestamp accepts unix seconds or any date layout known to dateparse.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, errors.Trace(err)
	}
	return t, nil
}
