// Copyright 2023 gorse Project Authors
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

package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type spanKeyType string

var spanKeyName = spanKeyType(uuid.New().String())

type Status string

const (
	StatusRunning  Status = "Running"
	StatusComplete Status = "Complete"
	StatusFailed   Status = "Failed"
)

// Listener is notified every time a span advances or finishes.
type Listener func(p Progress)

type Tracer struct {
	name     string
	listener Listener
	spans    sync.Map
}

func NewTracer(name string, listener Listener) *Tracer {
	return &Tracer{name: name, listener: listener}
}

// Start creates a root span.
func (t *Tracer) Start(ctx context.Context, name string, total int) (context.Context, *Span) {
	span := newSpan(t, name, total)
	t.spans.Store(name, span)
	return context.WithValue(ctx, spanKeyName, span), span
}

// List returns the progress of root spans ordered by name.
func (t *Tracer) List() []Progress {
	var progress []Progress
	t.spans.Range(func(_, value any) bool {
		progress = append(progress, value.(*Span).Progress())
		return true
	})
	sort.Slice(progress, func(i, j int) bool {
		return progress[i].Name < progress[j].Name
	})
	return progress
}

type Span struct {
	tracer *Tracer
	name   string

	mu     sync.Mutex
	status Status
	total  int
	count  int
	err    error
	start  time.Time
	finish time.Time
}

func newSpan(tracer *Tracer, name string, total int) *Span {
	return &Span{
		tracer: tracer,
		name:   name,
		status: StatusRunning,
		total:  total,
		start:  time.Now(),
	}
}

func (s *Span) Add(n int) {
	s.mu.Lock()
	s.count += n
	s.mu.Unlock()
	s.notify()
}

// Set moves the count forward to n. A smaller n is ignored so concurrent reporters
// never rewind the span.
func (s *Span) Set(n int) {
	s.mu.Lock()
	s.count = max(s.count, n)
	s.mu.Unlock()
	s.notify()
}

func (s *Span) End() {
	s.mu.Lock()
	if s.status == StatusRunning {
		s.status = StatusComplete
		s.count = s.total
		s.finish = time.Now()
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Span) Fail(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.err = err
	s.finish = time.Now()
	s.mu.Unlock()
	s.notify()
}

func (s *Span) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Span) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{
		Name:       s.name,
		Status:     s.status,
		Count:      s.count,
		Total:      s.total,
		StartTime:  s.start,
		FinishTime: s.finish,
	}
	if s.tracer != nil {
		p.Tracer = s.tracer.name
	}
	if s.err != nil {
		p.Error = s.err.Error()
	}
	return p
}

func (s *Span) notify() {
	if s.tracer != nil && s.tracer.listener != nil {
		s.tracer.listener(s.Progress())
	}
}

// Start creates a span under the span carried by ctx. Without a parent, the span is detached
// and reports to nobody.
func Start(ctx context.Context, name string, total int) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	var tracer *Tracer
	if parent, ok := ctx.Value(spanKeyName).(*Span); ok {
		tracer = parent.tracer
	}
	span := newSpan(tracer, name, total)
	return context.WithValue(ctx, spanKeyName, span), span
}

// Fail marks the span carried by ctx as failed.
func Fail(ctx context.Context, err error) {
	if span, ok := ctx.Value(spanKeyName).(*Span); ok {
		span.Fail(err)
	}
}

type Progress struct {
	Tracer     string
	Name       string
	Status     Status
	Error      string
	Count      int
	Total      int
	StartTime  time.Time
	FinishTime time.Time
}
