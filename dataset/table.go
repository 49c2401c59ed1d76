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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"modernc.org/mathutil"
)

// Table is a loaded delimited file: a header and rows of raw text fields.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]string
}

func NewTable(name string, columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, column := range columns {
		index[column] = i
	}
	return &Table{name: name, columns: columns, index: index, rows: rows}
}

// LoadCSV loads a delimited file with a header row.
func LoadCSV(path string, sep rune) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := ReadCSV(name, file, sep)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load %s", path)
	}
	return table, nil
}

// ReadCSV reads a delimited stream with a header row. Every data row must have as many
// fields as the header.
func ReadCSV(name string, r io.Reader, sep rune) (*Table, error) {
	reader := newCSVReader(r, sep)
	header, _, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Errorf("%s: missing header", name)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	header = lo.Map(header, func(column string, _ int) string {
		return strings.TrimSpace(column)
	})
	var rows [][]string
	for {
		fields, line, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		if len(fields) != len(header) {
			return nil, errors.Errorf("%s: line %d has %d fields, expected %d", name, line, len(fields), len(header))
		}
		rows = append(rows, fields)
	}
	return NewTable(name, header, rows), nil
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Columns() []string {
	return t.columns
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// ColumnIndex returns the position of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Head returns a table with the first n rows.
func (t *Table) Head(n int) *Table {
	n = mathutil.Clamp(n, 0, len(t.rows))
	return NewTable(t.name, t.columns, t.rows[:n])
}

// Select projects the table onto the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	positions := make([]int, len(names))
	for i, name := range names {
		if positions[i] = t.ColumnIndex(name); positions[i] < 0 {
			return nil, errors.NotFoundf("column %q in %s", name, t.name)
		}
	}
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = lo.Map(positions, func(p int, _ int) string {
			return row[p]
		})
	}
	return NewTable(t.name, names, rows), nil
}
