package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// fakeLLM answers by prompt kind and records every call.
type fakeLLM struct {
	mu       sync.Mutex
	perceive string
	topics   string
	script   string
	err      error
	calls    []fakeCall
}

type fakeCall struct {
	system, user string
	opts         CallOpts
}

func (f *fakeLLM) Complete(_ context.Context, system, user string, opts CallOpts) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{system, user, opts})
	if f.err != nil {
		return "", f.err
	}
	switch system {
	case perceiveSystemPrompt:
		return f.perceive, nil
	case topicsSystemPrompt:
		return f.topics, nil
	}
	return f.script, nil
}

func (f *fakeLLM) callsTo(system string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.system == system {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeLLM) scriptCalls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.system != perceiveSystemPrompt && c.system != topicsSystemPrompt {
			out = append(out, c)
		}
	}
	return out
}

// fakeSource returns canned items or an error and records tasks.
type fakeSource struct {
	name  string
	items []ContentItem
	err   error
	delay time.Duration

	mu    sync.Mutex
	tasks []ScrapeTask
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Scrape(ctx context.Context, task ScrapeTask) ([]ContentItem, error) {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.items), nil
}

// memHistory is an in-memory HistoryStore.
type memHistory struct {
	mu      sync.Mutex
	records []*Record
	failErr error
}

func (m *memHistory) Save(_ context.Context, r *Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", m.failErr
	}
	r.ID = fmt.Sprintf("rec-%d", len(m.records)+1)
	r.CreatedAt = time.Now().UTC()
	m.records = append(m.records, r)
	return r.ID, nil
}

func (m *memHistory) Get(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memHistory) List(_ context.Context) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Summary, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i].Summarize())
	}
	return out, nil
}

func (m *memHistory) Close() error { return nil }

var errFakeTransport = errors.New("connection reset")

// setupPipeline installs a fake LLM, fake sources and an in-memory history,
// and disables the cache. It restores the source registry afterwards.
func setupPipeline(t interface{ Cleanup(func()) }, llm *fakeLLM, srcs ...*fakeSource) *memHistory {
	Init(Config{LLM: llm})
	CloseCache()

	sourcesMu.Lock()
	saved := sourceSet
	sourceSet = map[string]Source{}
	sourcesMu.Unlock()
	for _, s := range srcs {
		RegisterSource(s)
	}

	h := &memHistory{}
	SetHistory(h)
	t.Cleanup(func() {
		sourcesMu.Lock()
		sourceSet = saved
		sourcesMu.Unlock()
		SetHistory(nil)
	})
	return h
}
