package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/anatolykoptev/go_dyut/internal/render"
	"github.com/go-chi/chi/v5"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleTopics(w http.ResponseWriter, r *http.Request) {
	var req engine.TopicsRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := engine.RunTopics(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func handleScript(w http.ResponseWriter, r *http.Request) {
	var req engine.ScriptRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := engine.RunScript(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// researchResponse carries total_scraped and errors only on debug requests.
type researchResponse struct {
	ReportMarkdown string               `json:"report_markdown"`
	Results        []engine.ContentItem `json:"results"`
	StoredRecordID string               `json:"stored_record_id"`
	TotalScraped   *int                 `json:"total_scraped,omitempty"`
	Errors         *[]string            `json:"errors,omitempty"`
}

func handleResearch(w http.ResponseWriter, r *http.Request) {
	var req engine.ResearchRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := engine.RunResearch(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := researchResponse{
		ReportMarkdown: out.ReportMarkdown,
		Results:        out.Results,
		StoredRecordID: out.StoredRecordID,
	}
	if resp.Results == nil {
		resp.Results = []engine.ContentItem{}
	}
	if req.IncludeDebug {
		total := 0
		if out.TotalScraped != nil {
			total = *out.TotalScraped
		}
		errs := out.Errors
		if errs == nil {
			errs = []string{}
		}
		resp.TotalScraped = &total
		resp.Errors = &errs
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleHistoryList(w http.ResponseWriter, r *http.Request) {
	h, ok := historyStore(w, r)
	if !ok {
		return
	}
	list, err := h.List(r.Context())
	if err != nil {
		writeError(w, r, engine.StorageError("list records", err))
		return
	}
	if list == nil {
		list = []engine.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": list})
}

func handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := loadRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleHistoryHTML renders a stored report as an HTML fragment.
// ?as= picks the renderer; markdown when absent.
func handleHistoryHTML(w http.ResponseWriter, r *http.Request) {
	kind, err := render.ParseKind(r.URL.Query().Get("as"))
	if err != nil {
		writeError(w, r, engine.ValidationError(err.Error()))
		return
	}
	rec, ok := loadRecord(w, r)
	if !ok {
		return
	}
	writeHTML(w, render.Render(kind, rec.ReportMarkdown))
}

// handleRender renders the raw request body.
func handleRender(w http.ResponseWriter, r *http.Request) {
	kind, err := render.ParseKind(r.URL.Query().Get("as"))
	if err != nil {
		writeError(w, r, engine.ValidationError(err.Error()))
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeBodyError(w, r, err)
		return
	}
	writeHTML(w, render.Render(kind, string(body)))
}

func historyStore(w http.ResponseWriter, r *http.Request) (engine.HistoryStore, bool) {
	h := engine.History()
	if h == nil {
		writeError(w, r, engine.StorageError("history store is not configured", nil))
		return nil, false
	}
	return h, true
}

func loadRecord(w http.ResponseWriter, r *http.Request) (*engine.Record, bool) {
	h, ok := historyStore(w, r)
	if !ok {
		return nil, false
	}
	rec, err := h.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return rec, true
}

// decode reads a JSON body into v, answering 400 on malformed input.
// An empty body decodes as the zero request so validation messages apply.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeBodyError(w, r, err)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response", slog.Any("error", err))
	}
}

func writeHTML(w http.ResponseWriter, fragment string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, fragment)
}

// writeError answers {"detail": ...} with the status mapped from err.
// writeBodyError answers 413 for an oversized body and 400 for anything
// else that went wrong reading it.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
			"detail": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	writeError(w, r, engine.ValidationError("invalid request body: "+err.Error()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := engine.StatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.Error("api: request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}
	writeJSON(w, status, map[string]string{"detail": engine.ErrorDetail(err)})
}
