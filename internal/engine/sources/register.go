// Package sources implements the scrapers behind engine.Scrape: YouTube,
// Reddit, Hacker News and a generic page extractor.
package sources

import "github.com/anatolykoptev/go_dyut/internal/engine"

// Register installs the built-in sources. Call after engine.Init.
func Register() {
	limiter := newHostLimiter(engine.Cfg.SourceRatePerSec)
	engine.RegisterSource(NewYouTube(limiter))
	engine.RegisterSource(NewReddit(limiter))
	engine.RegisterSource(NewGeneric(limiter))
	engine.RegisterSource(NewHackerNews(limiter))
}
