package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey             string
	LLMAPIKeyFallbacks    []string
	LLMAPIBase            string
	LLMModel              string
	LLMTemperature        float64
	LLMMaxTokens          int
	MaxContentChars       int
	FetchTimeout          time.Duration
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	RedditStealth         bool    // route Reddit through BrowserClient
	SourceRatePerSec      float64 // per-host request rate for scrapers, 0 = unlimited
	CacheMaxEntries       int
	CacheCleanupInterval  time.Duration
	HTTPClient            *http.Client
	BrowserClient         *BrowserClient // nil = plain HTTP only
	LLM                   LLM            // nil = generation endpoints fail with an LLM error
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = 3000
	}
	cfg = c
	Cfg = &cfg
}
