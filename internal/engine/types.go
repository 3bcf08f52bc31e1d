package engine

import "time"

// Source names.
const (
	SourceYouTube    = "youtube"
	SourceReddit     = "reddit"
	SourceGeneric    = "generic"
	SourceHackerNews = "hackernews"
)

// Perception intents.
const (
	IntentTrendDiscovery    = "trend_discovery"
	IntentInfluencerRanking = "influencer_ranking"
	IntentContentIdeation   = "content_ideation"
)

// ContentItem is one scraped piece of content, normalised across sources.
type ContentItem struct {
	ID             string         `json:"id"`
	Source         string         `json:"source"`
	URL            string         `json:"url"`
	Title          string         `json:"title"`
	Author         string         `json:"author"`
	PublishedAt    string         `json:"published_at,omitempty"`
	ExtractedText  string         `json:"extracted_text"`
	Engagement     map[string]any `json:"engagement"`
	RawMetadata    map[string]any `json:"raw_metadata"`
	RelevanceScore float64        `json:"relevance_score"`
}

// Perception is the parsed research intent of a prompt.
type Perception struct {
	Keywords         []string `json:"keywords"`
	Intent           string   `json:"intent"`
	ExpandedKeywords []string `json:"expanded_keywords"`
	SourceStrategy   []string `json:"source_strategy"`
	ResearchPlan     string   `json:"research_plan"`
}

// AsMap returns the perception as a record plan.
func (p Perception) AsMap() map[string]any {
	return map[string]any{
		"keywords":          nonNil(p.Keywords),
		"intent":            p.Intent,
		"expanded_keywords": nonNil(p.ExpandedKeywords),
		"source_strategy":   nonNil(p.SourceStrategy),
		"research_plan":     p.ResearchPlan,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ScrapeTask is one unit of scraping work. An empty URL means keyword search.
type ScrapeTask struct {
	URL        string   `json:"url"`
	Source     string   `json:"source"`
	Keywords   []string `json:"keywords"`
	TimeWindow string   `json:"time_window"`
}

// Plan is the output of Reason.
type Plan struct {
	Tasks       []ScrapeTask `json:"scrape_plan"`
	AllKeywords []string     `json:"all_keywords"`
	Intent      string       `json:"intent"`
}

// --- Requests ---

type TopicsRequest struct {
	Prompt     string   `json:"prompt,omitempty" jsonschema:"Free-form research prompt"`
	Category   string   `json:"category,omitempty" jsonschema:"Content category, e.g. finance, gaming, education"`
	TargetURLs []string `json:"target_urls,omitempty" jsonschema:"Optional URLs to scrape instead of keyword search"`
	NumTitles  int      `json:"num_titles,omitempty" jsonschema:"Number of titles to generate, 1-5 (default 3)"`
	TimeWindow string   `json:"time_window,omitempty" jsonschema:"Time window: 24h, 7d, 14d, 30d (default 7d)"`
}

type ScriptRequest struct {
	Topic               string `json:"topic" jsonschema:"Video title or topic to script"`
	Category            string `json:"category,omitempty" jsonschema:"Content category"`
	VideoDuration       string `json:"video_duration,omitempty" jsonschema:"Target spoken length (default 5 min)"`
	BRollEnabled        bool   `json:"broll_enabled,omitempty" jsonschema:"Add [B-Roll: ...] cues"`
	OnScreenTextEnabled bool   `json:"onscreen_text_enabled,omitempty" jsonschema:"Add [TEXT: ...] cues"`
	ContextSnapshot     string `json:"context_snapshot,omitempty" jsonschema:"Research context returned by topics generation"`
	OriginalPrompt      string `json:"original_prompt,omitempty" jsonschema:"Prompt the topic was generated from"`
}

type ResearchRequest struct {
	TargetURLs    []string `json:"target_urls,omitempty" jsonschema:"Optional URLs to scrape instead of keyword search"`
	Prompt        string   `json:"prompt" jsonschema:"Research prompt"`
	TimeWindow    string   `json:"time_window,omitempty" jsonschema:"Time window: 24h, 7d, 14d, 30d (default 7d)"`
	Category      string   `json:"category,omitempty" jsonschema:"Content category"`
	NumResults    int      `json:"num_results,omitempty" jsonschema:"Ranked results to keep, 1-20 (default 10)"`
	IncludeDebug  bool     `json:"include_debug,omitempty" jsonschema:"Include total_scraped and errors"`
	VideoDuration string   `json:"video_duration,omitempty" jsonschema:"Target spoken length (default 5-7 min)"`
}

// --- Results ---

type TopicsResult struct {
	Topics          string   `json:"topics"`
	ContextSnapshot string   `json:"context_snapshot"`
	Keywords        []string `json:"keywords"`
}

type ScriptResult struct {
	Script         string `json:"script"`
	StoredRecordID string `json:"stored_record_id"`
}

type ResearchResult struct {
	ReportMarkdown string        `json:"report_markdown"`
	Results        []ContentItem `json:"results"`
	StoredRecordID string        `json:"stored_record_id"`
	TotalScraped   *int          `json:"total_scraped,omitempty"`
	Errors         []string      `json:"errors,omitempty"`
}

// --- History ---

// Record is one stored research or script run.
type Record struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	Inputs          map[string]any `json:"inputs"`
	Plan            map[string]any `json:"plan"`
	SelectedResults []ContentItem  `json:"selected_results"`
	ReportMarkdown  string         `json:"report_markdown"`
	Errors          []string       `json:"errors"`
	TotalScraped    int            `json:"total_scraped"`
}

// Summary is the list view of a Record.
type Summary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Prompt       string    `json:"prompt"`
	Category     string    `json:"category"`
	NumResults   int       `json:"num_results"`
	TotalScraped int       `json:"total_scraped"`
}

// Summarize builds the list view of r. The prompt falls back to the script topic.
func (r *Record) Summarize() Summary {
	prompt, _ := r.Inputs["prompt"].(string)
	if prompt == "" {
		prompt, _ = r.Inputs["topic"].(string)
	}
	category, _ := r.Inputs["category"].(string)
	return Summary{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Prompt:       prompt,
		Category:     category,
		NumResults:   len(r.SelectedResults),
		TotalScraped: r.TotalScraped,
	}
}
