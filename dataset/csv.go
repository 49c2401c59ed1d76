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
	"bufio"
	"io"
	"strings"

	"github.com/juju/errors"
)

const maxLineSize = 1 << 20

// csvReader splits delimited text into records. Quoted fields may contain the separator,
// doubled quotes and line breaks.
type csvReader struct {
	sc   *bufio.Scanner
	sep  rune
	line int // number of lines consumed so far
}

func newCSVReader(r io.Reader, sep rune) *csvReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &csvReader{sc: sc, sep: sep}
}

// Read returns the next record and the line number it starts at. It returns io.EOF after
// the last record. Blank lines are skipped.
func (r *csvReader) Read() ([]string, int, error) {
	var (
		fields  []string
		builder strings.Builder
		quoted  bool
		start   int
	)
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		if !quoted && len(text) == 0 {
			continue
		}
		if start == 0 {
			start = r.line
		}
		if quoted {
			builder.WriteRune('\n')
		}
		line := []rune(text)
		for i := 0; i < len(line); i++ {
			switch {
			case line[i] == r.sep && !quoted:
				fields = append(fields, builder.String())
				builder.Reset()
			case line[i] == '"':
				if !quoted {
					quoted = true
				} else if i+1 < len(line) && line[i+1] == '"' {
					i++
					builder.WriteRune('"')
				} else {
					quoted = false
				}
			default:
				builder.WriteRune(line[i])
			}
		}
		if !quoted {
			fields = append(fields, builder.String())
			return fields, start, nil
		}
	}
	if err := r.sc.Err(); err != nil {
		return nil, start, errors.Trace(err)
	}
	if quoted {
		return nil, start, errors.Errorf("line %d: unterminated quoted field", start)
	}
	return nil, start, io.EOF
}
