package testdoubles

import (
	"context"
	"sync"

	"github.com/campusops/library-circulation/journal"
)

// SpanSpy is a captured span. Status is empty until the span is finished.
type SpanSpy struct {
	mu         sync.Mutex
	Name       string
	Status     string
	Attributes map[string]string
	Finished   bool
}

func (s *SpanSpy) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = status
}

func (s *SpanSpy) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Attributes[key] = value
}

// TracingSpy implements journal.TracingCollector.
type TracingSpy struct {
	mu    sync.Mutex
	spans []*SpanSpy
}

func NewTracingSpy() *TracingSpy {
	return &TracingSpy{}
}

func (t *TracingSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, journal.SpanContext) {
	span := &SpanSpy{Name: name, Attributes: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		span.Attributes[k] = v
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.spans = append(t.spans, span)

	return ctx, span
}

func (t *TracingSpy) FinishSpan(spanCtx journal.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpanSpy)
	if !ok {
		return
	}

	span.mu.Lock()
	defer span.mu.Unlock()

	span.Status = status
	span.Finished = true
	for k, v := range attrs {
		span.Attributes[k] = v
	}
}

// Names returns span names in start order.
func (t *TracingSpy) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.spans))
	for _, s := range t.spans {
		out = append(out, s.Name)
	}

	return out
}

// Statuses returns final span statuses in start order.
func (t *TracingSpy) Statuses() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.spans))
	for _, s := range t.spans {
		s.mu.Lock()
		out = append(out, s.Status)
		s.mu.Unlock()
	}

	return out
}

var _ journal.TracingCollector = (*TracingSpy)(nil)
