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

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gorse-io/gorse-als/base/log"
	"github.com/gorse-io/gorse-als/base/progress"
	"github.com/gorse-io/gorse-als/engine"
	"github.com/gorse-io/gorse-als/logics"
	"github.com/gorse-io/gorse-als/model/cf"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// searchBar draws grid search progress.
type searchBar struct {
	mu  sync.Mutex
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newSearchBar(w io.Writer) *searchBar {
	return &searchBar{w: w}
}

func (b *searchBar) Listen(p progress.Progress) {
	if p.Name != "GridSearch" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		b.bar = progressbar.NewOptions(p.Total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetDescription("grid search"),
			progressbar.OptionShowCount())
	}
	if err := b.bar.Set(p.Count); err != nil {
		log.Logger().Warn("failed to draw progress", zap.Error(err))
	}
	if p.Status != progress.StatusRunning {
		_ = b.bar.Finish()
		_, _ = fmt.Fprintln(b.w)
		b.bar = nil
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.Header(lo.ToAnySlice(header)...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			log.Logger().Error("failed to append row", zap.Error(err))
		}
	}
	if err := table.Render(); err != nil {
		log.Logger().Error("failed to render table", zap.Error(err))
	}
}

func renderReport(w io.Writer, report *engine.Report) {
	_, _ = fmt.Fprintln(w, "Grid search")
	renderTable(w, []string{"#", "Rank", "Reg", "Validation RMSE", "Error"},
		lo.Map(report.Search.Trials, func(trial cf.Trial, i int) []string {
			index := fmt.Sprint(i)
			if i == report.Search.BestIndex {
				index += " *"
			}
			errMessage := ""
			if trial.Err != nil {
				errMessage = trial.Err.Error()
			}
			return []string{index, fmt.Sprint(trial.Rank), fmt.Sprint(trial.Reg), fmt.Sprint(trial.Score), errMessage}
		}))

	_, _ = fmt.Fprintln(w, "Summary")
	renderTable(w, []string{"Metric", "Value"}, [][]string{
		{"Ratings (train, validation, test)", strings.Join(lo.Map(report.SplitCounts, func(n int, _ int) string { return fmt.Sprint(n) }), ", ")},
		{"Best rank", fmt.Sprint(report.Search.BestRank)},
		{"Best regularization", fmt.Sprint(report.Search.BestReg)},
		{"Train RMSE", fmt.Sprint(report.TrainRMSE)},
		{"Validation RMSE", fmt.Sprint(report.ValidationRMSE)},
		{"Test RMSE", fmt.Sprint(report.TestRMSE)},
		{"Total runtime", fmt.Sprintf("%.2f seconds", report.Runtime.Seconds())},
	})

	_, _ = fmt.Fprintf(w, "Movies rated by user %d in all splits\n", report.UserId)
	renderTable(w, []string{"Movie", "Title", "Rating"},
		lo.Map(report.Rated, func(r logics.RatedMovie, _ int) []string {
			return []string{fmt.Sprint(r.ItemId), r.Title, fmt.Sprint(r.Rating)}
		}))

	_, _ = fmt.Fprintf(w, "Test split predictions for user %d\n", report.UserId)
	renderTable(w, []string{"Movie", "Rating", "Prediction"},
		lo.Map(report.HeldOut, func(p cf.Prediction, _ int) []string {
			return []string{fmt.Sprint(p.ItemId), fmt.Sprint(p.Rating), fmt.Sprint(p.Prediction)}
		}))

	_, _ = fmt.Fprintf(w, "Recommended movies for user %d\n", report.UserId)
	renderTable(w, []string{"Movie", "Title", "Genres", "Prediction"},
		lo.Map(report.Recommendations, func(r logics.Recommendation, _ int) []string {
			return []string{fmt.Sprint(r.ItemId), r.Title, strings.Join(r.Genres, "|"), fmt.Sprint(r.Prediction)}
		}))
}

func renderSummaries(w io.Writer, summaries []engine.TableSummary) {
	for _, summary := range summaries {
		_, _ = fmt.Fprintf(w, "%s (%d rows)\n", summary.Kind, summary.Len)
		rows := make([][]string, summary.Head.Len())
		for i := range rows {
			rows[i] = summary.Head.Row(i)
		}
		renderTable(w, summary.Head.Columns(), rows)
	}
}
