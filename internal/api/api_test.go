package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/anatolykoptev/go_dyut/internal/render"
	"github.com/anatolykoptev/go_dyut/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers by the role named in the system prompt.
type scriptedLLM struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (l *scriptedLLM) Complete(_ context.Context, system, _ string, _ engine.CallOpts) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return "", l.err
	}
	switch {
	case strings.Contains(system, "research planner"):
		return `{"keywords":["budget"],"intent":"trend_discovery","expanded_keywords":[],"source_strategy":["youtube","reddit"],"research_plan":"p"}`, nil
	case strings.Contains(system, "title strategist"):
		return "1. Budget Like A Pro", nil
	}
	return "[HOOK]\n**Stop** wasting money\n[B-Roll: wallet]", nil
}

type stubSource struct {
	name  string
	items []engine.ContentItem
	err   error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Scrape(context.Context, engine.ScrapeTask) ([]engine.ContentItem, error) {
	return s.items, s.err
}

func setup(t *testing.T, llm engine.LLM) (http.Handler, engine.HistoryStore) {
	t.Helper()
	engine.Init(engine.Config{LLM: llm})
	engine.RegisterSource(stubSource{name: engine.SourceYouTube, items: []engine.ContentItem{{
		ID: "v1", Source: engine.SourceYouTube, Title: "Budget tips", URL: "https://youtube.com/watch?v=abc",
		Engagement: map[string]any{"views": 1000}, RawMetadata: map[string]any{},
	}}})
	engine.RegisterSource(stubSource{name: engine.SourceReddit, err: engine.ScrapingError(engine.SourceReddit, errors.New("status 429"))})
	engine.RegisterSource(stubSource{name: engine.SourceGeneric})

	h, err := store.OpenJSONFile(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	engine.SetHistory(h)
	t.Cleanup(func() { engine.SetHistory(nil) })

	return NewHandler(Options{CORSOrigins: []string{"http://localhost:3000"}}), h
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTopics(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})

	rec := do(t, h, http.MethodPost, "/api/topics", `{"prompt":"budgeting for students","num_titles":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[engine.TopicsResult](t, rec)
	assert.Equal(t, "1. Budget Like A Pro", out.Topics)
	assert.Contains(t, out.ContextSnapshot, "Budget tips")
	assert.Equal(t, []string{"budget"}, out.Keywords)
}

func TestTopicsValidation(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})

	tests := []struct {
		name, body, detail string
	}{
		{"no prompt or category", `{}`, "Provide a prompt or select a category."},
		{"empty body", ``, "Provide a prompt or select a category."},
		{"too many titles", `{"prompt":"x","num_titles":6}`, "num_titles must be between 1 and 5"},
		{"malformed", `{"prompt":`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/topics", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody[map[string]string](t, rec)["detail"], tt.detail)
		})
	}
}

func TestScriptStoresRecord(t *testing.T) {
	h, hist := setup(t, &scriptedLLM{})

	rec := do(t, h, http.MethodPost, "/api/script", `{"topic":"Budget Like A Pro","broll_enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[engine.ScriptResult](t, rec)
	assert.Contains(t, out.Script, "[HOOK]")

	stored, err := hist.Get(context.Background(), out.StoredRecordID)
	require.NoError(t, err)
	assert.Equal(t, "Budget Like A Pro", stored.Inputs["topic"])
	assert.Equal(t, true, stored.Inputs["broll_enabled"])
}

func TestScriptLLMUnavailable(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{err: errors.New("connection refused")})

	rec := do(t, h, http.MethodPost, "/api/script", `{"topic":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody[map[string]string](t, rec)["detail"], "LLM error: "))
}

func TestResearchDebugFields(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})

	rec := do(t, h, http.MethodPost, "/api/research", `{"prompt":"budgeting"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plain := decodeBody[map[string]any](t, rec)
	assert.NotContains(t, plain, "total_scraped")
	assert.NotContains(t, plain, "errors")
	assert.Contains(t, plain["report_markdown"], "[HOOK]")
	assert.Len(t, plain["results"], 1)
	assert.NotEmpty(t, plain["stored_record_id"])

	rec = do(t, h, http.MethodPost, "/api/research", `{"prompt":"budgeting","include_debug":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	debug := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(1), debug["total_scraped"])
	assert.Equal(t, []any{"reddit: status 429"}, debug["errors"])
}

func TestResearchValidation(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})
	rec := do(t, h, http.MethodPost, "/api/research", `{"prompt":"x","num_results":21}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/research", `{"prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})

	rec := do(t, h, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())

	research := decodeBody[map[string]any](t, do(t, h, http.MethodPost, "/api/research", `{"prompt":"budgeting","category":"finance"}`))
	script := decodeBody[engine.ScriptResult](t, do(t, h, http.MethodPost, "/api/script", `{"topic":"Topic B"}`))

	list := decodeBody[struct {
		History []engine.Summary `json:"history"`
	}](t, do(t, h, http.MethodGet, "/api/history", ""))
	require.Len(t, list.History, 2)
	assert.Equal(t, script.StoredRecordID, list.History[0].ID)
	assert.Equal(t, "Topic B", list.History[0].Prompt)
	assert.Equal(t, research["stored_record_id"], list.History[1].ID)
	assert.Equal(t, "finance", list.History[1].Category)
	assert.Equal(t, 1, list.History[1].NumResults)

	rec = do(t, h, http.MethodGet, "/api/history/"+script.StoredRecordID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[engine.Record](t, rec)
	assert.Equal(t, script.StoredRecordID, got.ID)
	assert.Contains(t, got.ReportMarkdown, "[HOOK]")
}

func TestHistoryNotFound(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})
	for _, path := range []string{"/api/history/nope", "/api/history/nope/html"} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail":"Research record not found"}`, rec.Body.String(), path)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})
	engine.SetHistory(nil)
	rec := do(t, h, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHistoryHTML(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})
	script := decodeBody[engine.ScriptResult](t, do(t, h, http.MethodPost, "/api/script", `{"topic":"x"}`))
	base := "/api/history/" + script.StoredRecordID + "/html"

	rec := do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<strong>Stop</strong>")

	rec = do(t, h, http.MethodGet, base+"?as=script", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="`+render.ClassSectionLabel+`"`)

	rec = do(t, h, http.MethodGet, base+"?as=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderEndpoint(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})

	rec := do(t, h, http.MethodPost, "/api/render", "# Title")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Title</h1>", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/render?as=markdown-safe", "<script>x</script>")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")

	rec = do(t, h, http.MethodPost, "/api/render?as=nope", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOversizedBody(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})
	big := strings.Repeat("a", maxBodyBytes+1)

	rec := do(t, h, http.MethodPost, "/api/render", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body exceeds")

	rec = do(t, h, http.MethodPost, "/api/topics", `{"prompt":"`+big+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/topics", `{"prompt":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestCORS(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})

	req := httptest.NewRequest(http.MethodOptions, "/api/topics", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := setup(t, &scriptedLLM{})
	do(t, h, http.MethodGet, "/health", "")
	do(t, h, http.MethodGet, "/api/history/abc", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	assert.Contains(t, text, `dyut_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, text, `route="/api/history/{id}",status="404"`)
	assert.Contains(t, text, "dyut_engine_records_stored_total")
	assert.Contains(t, text, "go_goroutines")
}
