package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Request defaults and limits.
const (
	DefaultTimeWindow       = "7d"
	DefaultNumTitles        = 3
	MaxNumTitles            = 5
	DefaultNumResults       = 10
	MaxNumResults           = 20
	DefaultScriptDuration   = "5 min"
	DefaultResearchDuration = "5-7 min"
	contextTextRunes        = 200
	perceiveFallbackWords   = 8
)

var defaultStrategy = []string{SourceYouTube, SourceReddit}

// --- P: Perceive ---

// Perceive asks the LLM for keywords, intent and source strategy. An answer
// that is not valid JSON degrades to a keyword plan built from the prompt.
func Perceive(ctx context.Context, prompt string, targetURLs []string) (Perception, error) {
	urls := "None (use keyword search)"
	if len(targetURLs) > 0 {
		b, _ := json.Marshal(targetURLs)
		urls = string(b)
	}
	user := fmt.Sprintf(perceiveUserPrompt, prompt, urls)

	p, ok, err := completeJSON[Perception](ctx, "Perceive phase failed", perceiveSystemPrompt, user,
		CallOpts{Temperature: 0.3, MaxTokens: 800})
	if err != nil {
		return Perception{}, err
	}
	if !ok {
		slog.Debug("perceive: undecodable plan, using fallback", slog.String("prompt", prompt))
		return fallbackPerception(prompt), nil
	}
	if p.Intent == "" {
		p.Intent = IntentContentIdeation
	}
	return p, nil
}

func fallbackPerception(prompt string) Perception {
	return Perception{
		Keywords:         FirstWords(prompt, perceiveFallbackWords),
		Intent:           IntentContentIdeation,
		ExpandedKeywords: []string{},
		SourceStrategy:   slices.Clone(defaultStrategy),
		ResearchPlan:     "Search for content related to: " + prompt,
	}
}

// --- R: Reason ---

// Reason turns a perception into scrape tasks: one per target URL, or one
// keyword search per strategy source when no URLs are given.
func Reason(p Perception, targetURLs []string, timeWindow string) Plan {
	keywords := make([]string, 0, len(p.Keywords)+len(p.ExpandedKeywords))
	keywords = append(keywords, p.Keywords...)
	keywords = append(keywords, p.ExpandedKeywords...)

	strategy := p.SourceStrategy
	if strategy == nil {
		strategy = defaultStrategy
	}
	intent := p.Intent
	if intent == "" {
		intent = IntentContentIdeation
	}

	var tasks []ScrapeTask
	for _, u := range targetURLs {
		tasks = append(tasks, ScrapeTask{URL: u, Source: ClassifyURL(u), Keywords: keywords, TimeWindow: timeWindow})
	}
	if len(targetURLs) == 0 {
		for _, src := range strategy {
			tasks = append(tasks, ScrapeTask{Source: src, Keywords: keywords, TimeWindow: timeWindow})
		}
	}
	return Plan{Tasks: tasks, AllKeywords: keywords, Intent: intent}
}

// ClassifyURL picks the source for a target URL by host substring.
func ClassifyURL(u string) string {
	switch {
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return SourceYouTube
	case strings.Contains(u, "reddit.com"):
		return SourceReddit
	}
	return SourceGeneric
}

// --- A: Act ---

// Scrape runs all plan tasks concurrently. Items keep task order; a failing
// task contributes a "<source>: <error>" line instead of aborting the run.
func Scrape(ctx context.Context, plan Plan) ([]ContentItem, []string) {
	results := make([][]ContentItem, len(plan.Tasks))
	failures := make([]error, len(plan.Tasks))

	var wg sync.WaitGroup
	for i, task := range plan.Tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src := SourceFor(task.Source)
			if src == nil {
				failures[i] = fmt.Errorf("no source registered")
				return
			}
			items, err := src.Scrape(ctx, task)
			if err != nil {
				failures[i] = err
				return
			}
			results[i] = items
		}()
	}
	wg.Wait()

	var items []ContentItem
	var errs []string
	for i, task := range plan.Tasks {
		if failures[i] != nil {
			metrics.ScrapeErrors.Add(1)
			slog.Warn("scrape failed", slog.String("source", task.Source), slog.String("url", task.URL), slog.Any("error", failures[i]))
			errs = append(errs, task.Source+": "+scrapeErrorText(failures[i]))
			continue
		}
		items = append(items, results[i]...)
	}
	return items, errs
}

// scrapeErrorText drops the scraping error prefix; the source name is
// already in front of it.
func scrapeErrorText(err error) string {
	var re *ResearchError
	if errors.As(err, &re) && re.Kind == KindScraping && re.Err != nil {
		return re.Err.Error()
	}
	return err.Error()
}

// ResearchContext renders ranked items as prompt context, one line per item:
// "- title [source] | k: v, ... | first 200 chars of text".
func ResearchContext(items []ContentItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		keys := make([]string, 0, len(it.Engagement))
		for k := range it.Engagement {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		eng := make([]string, len(keys))
		for i, k := range keys {
			eng[i] = fmt.Sprintf("%s: %v", k, it.Engagement[k])
		}
		lines = append(lines, fmt.Sprintf("- %s [%s] | %s | %s",
			it.Title, it.Source, strings.Join(eng, ", "), TruncateRunes(it.ExtractedText, contextTextRunes, "")))
	}
	return strings.Join(lines, "\n")
}

// --- Generation ---

// GenerateTopics asks for a numbered list of n video titles.
func GenerateTopics(ctx context.Context, prompt, category string, n int, researchContext string) (string, error) {
	focus := strings.TrimSpace(prompt)
	if focus == "" {
		focus = fmt.Sprintf("trending topics in the %s niche", category)
	}
	if researchContext == "" {
		researchContext = noTopicsContext
	}
	user := fmt.Sprintf(topicsUserPrompt, n, focus, CategoryOrGeneral(category), ToneGuidance(category, prompt), researchContext)
	return callLLM(ctx, "Failed to generate topics", topicsSystemPrompt, user, CallOpts{Temperature: 0.75, MaxTokens: 500})
}

// ScriptParams configures GenerateScript.
type ScriptParams struct {
	Topic           string
	Category        string
	VideoDuration   string
	BRoll           bool
	OnScreenText    bool
	ResearchContext string
}

// GenerateScript writes a labelled script ([HOOK] ... [CONCLUSION]).
func GenerateScript(ctx context.Context, p ScriptParams) (string, error) {
	duration := p.VideoDuration
	if duration == "" {
		duration = DefaultScriptDuration
	}
	var cues string
	if p.BRoll {
		cues += brollInstruction
	}
	if p.OnScreenText {
		cues += onScreenTextInstruction
	}
	researchContext := p.ResearchContext
	if researchContext == "" {
		researchContext = noScriptContext
	}
	system := fmt.Sprintf(scriptSystemPrompt, ToneGuidance(p.Category, p.Topic), duration, cues)
	user := fmt.Sprintf(scriptUserPrompt, p.Topic, CategoryOrGeneral(p.Category), duration, researchContext)
	return callLLM(ctx, "Failed to generate script", system, user, CallOpts{Temperature: 0.72, MaxTokens: 6000})
}

// --- Pipelines ---

// RunTopics scrapes and ranks research material, then generates topic titles.
// Results are cached per request.
func RunTopics(ctx context.Context, req TopicsRequest) (out *TopicsResult, err error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Category = strings.TrimSpace(req.Category)
	if req.Prompt == "" && req.Category == "" {
		return nil, ValidationError("Provide a prompt or select a category.")
	}
	if req.NumTitles == 0 {
		req.NumTitles = DefaultNumTitles
	}
	if req.NumTitles < 1 || req.NumTitles > MaxNumTitles {
		return nil, ValidationError(fmt.Sprintf("num_titles must be between 1 and %d", MaxNumTitles))
	}
	if req.TimeWindow == "" {
		req.TimeWindow = DefaultTimeWindow
	}

	key := CacheKey("topics", req.Prompt, req.Category, strings.Join(req.TargetURLs, ","), strconv.Itoa(req.NumTitles), req.TimeWindow)
	if cached, ok := CacheLoadJSON[TopicsResult](ctx, key); ok {
		return &cached, nil
	}

	metrics.TopicsRuns.Add(1)
	_ = TrackOperation(ctx, "topics", func(ctx context.Context) error {
		out, err = runTopics(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	CacheStoreJSON(ctx, key, *out)
	return out, nil
}

func runTopics(ctx context.Context, req TopicsRequest) (*TopicsResult, error) {
	topicPrompt := req.Prompt
	if topicPrompt == "" {
		topicPrompt = fmt.Sprintf("trending %s content on YouTube", req.Category)
	}

	perception, err := Perceive(ctx, topicPrompt, req.TargetURLs)
	if err != nil {
		return nil, err
	}
	plan := Reason(perception, req.TargetURLs, req.TimeWindow)

	items, errs := Scrape(ctx, plan)
	if len(errs) > 0 {
		slog.Debug("topics: scrape errors ignored", slog.Int("count", len(errs)))
	}
	ranked := Rank(items, plan.AllKeywords, max(req.NumTitles*3, 10))
	researchContext := ResearchContext(ranked)

	topics, err := GenerateTopics(ctx, req.Prompt, req.Category, req.NumTitles, researchContext)
	if err != nil {
		return nil, err
	}
	return &TopicsResult{
		Topics:          topics,
		ContextSnapshot: researchContext,
		Keywords:        plan.AllKeywords,
	}, nil
}

// RunScript generates a script for a chosen topic and stores it in history.
func RunScript(ctx context.Context, req ScriptRequest) (*ScriptResult, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return nil, ValidationError("topic is required")
	}
	if req.VideoDuration == "" {
		req.VideoDuration = DefaultScriptDuration
	}
	metrics.ScriptRuns.Add(1)

	script, err := GenerateScript(ctx, ScriptParams{
		Topic:           req.Topic,
		Category:        req.Category,
		VideoDuration:   req.VideoDuration,
		BRoll:           req.BRollEnabled,
		OnScreenText:    req.OnScreenTextEnabled,
		ResearchContext: req.ContextSnapshot,
	})
	if err != nil {
		return nil, err
	}

	id, err := track(ctx, &Record{
		Inputs: map[string]any{
			"topic":                 req.Topic,
			"category":              req.Category,
			"video_duration":        req.VideoDuration,
			"broll_enabled":         req.BRollEnabled,
			"onscreen_text_enabled": req.OnScreenTextEnabled,
			"original_prompt":       req.OriginalPrompt,
		},
		Plan:            map[string]any{},
		SelectedResults: []ContentItem{},
		ReportMarkdown:  script,
		Errors:          []string{},
	})
	if err != nil {
		return nil, err
	}
	return &ScriptResult{Script: script, StoredRecordID: id}, nil
}

// RunResearch runs perceive, reason, act and track in one call and returns
// the generated report with the ranked results.
func RunResearch(ctx context.Context, req ResearchRequest) (out *ResearchResult, err error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, ValidationError("prompt is required")
	}
	if req.NumResults == 0 {
		req.NumResults = DefaultNumResults
	}
	if req.NumResults < 1 || req.NumResults > MaxNumResults {
		return nil, ValidationError(fmt.Sprintf("num_results must be between 1 and %d", MaxNumResults))
	}
	if req.TimeWindow == "" {
		req.TimeWindow = DefaultTimeWindow
	}
	if req.VideoDuration == "" {
		req.VideoDuration = DefaultResearchDuration
	}
	if req.TargetURLs == nil {
		req.TargetURLs = []string{}
	}

	metrics.ResearchRuns.Add(1)
	_ = TrackOperation(ctx, "research", func(ctx context.Context) error {
		out, err = runResearch(ctx, req)
		return err
	})
	return out, err
}

func runResearch(ctx context.Context, req ResearchRequest) (*ResearchResult, error) {
	perception, err := Perceive(ctx, req.Prompt, req.TargetURLs)
	if err != nil {
		return nil, err
	}
	plan := Reason(perception, req.TargetURLs, req.TimeWindow)

	items, errs := Scrape(ctx, plan)
	ranked := Rank(items, plan.AllKeywords, req.NumResults)

	report, err := GenerateScript(ctx, ScriptParams{
		Topic:           req.Prompt,
		Category:        req.Category,
		VideoDuration:   req.VideoDuration,
		ResearchContext: ResearchContext(ranked),
	})
	if err != nil {
		return nil, err
	}

	errs = nonNil(errs)
	id, err := track(ctx, &Record{
		Inputs: map[string]any{
			"target_urls": req.TargetURLs,
			"prompt":      req.Prompt,
			"time_window": req.TimeWindow,
			"category":    req.Category,
			"num_results": req.NumResults,
		},
		Plan:            perception.AsMap(),
		SelectedResults: ranked,
		ReportMarkdown:  report,
		Errors:          errs,
		TotalScraped:    len(items),
	})
	if err != nil {
		return nil, err
	}

	total := len(items)
	return &ResearchResult{
		ReportMarkdown: report,
		Results:        ranked,
		StoredRecordID: id,
		TotalScraped:   &total,
		Errors:         errs,
	}, nil
}
