// go_dyut serves YouTube research and script generation.
//
// It exposes the dashboard REST API on HTTP_PORT and the same pipelines as MCP
// tools (topics_generate, script_generate, research_run, history_list,
// history_get, render_markup) on MCP_PORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_dyut/internal/api"
	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/anatolykoptev/go_dyut/internal/engine/sources"
	"github.com/anatolykoptev/go_dyut/internal/logging"
	"github.com/anatolykoptev/go_dyut/internal/store"
	"github.com/anatolykoptev/go_dyut/internal/toolserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version  = "dev"
	httpPort = env.Str("HTTP_PORT", "8890")
	mcpPort  = env.Str("MCP_PORT", "8891")
)

func main() {
	slog.SetDefault(logging.New(env.Str("LOG_LEVEL", "info"), env.Str("LOG_FORMAT", "text")))

	initEngine()
	defer engine.CloseCache()

	history, err := store.Open(context.Background(), store.Config{
		Backend: env.Str("HISTORY_BACKEND", store.BackendJSON),
		Path:    env.Str("HISTORY_PATH", "data/research_history.json"),
		DSN:     env.Str("DATABASE_URL", ""),
	})
	if err != nil {
		slog.Error("history store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer history.Close()
	engine.SetHistory(history)

	restServer := api.NewServer(":"+httpPort, api.NewHandler(api.Options{
		CORSOrigins: env.List("CORS_ORIGINS", "http://localhost:3000"),
	}))
	go func() {
		slog.Info("rest api listening", slog.String("port", httpPort))
		if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("rest api failed", slog.Any("error", err))
		}
	}()

	slog.Info("starting go_dyut",
		slog.String("version", version),
		slog.String("mcp_port", mcpPort),
		slog.Any("sources", engine.SourceNames()),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_dyut",
		Version: version,
	}, nil)

	toolserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", toolserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_dyut",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := restServer.Shutdown(ctx); err != nil {
		slog.Warn("rest api shutdown", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		LLMAPIKey:             env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:    env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:            env.Str("LLM_API_BASE", "https://api.groq.com/openai/v1"),
		LLMModel:              env.Str("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTemperature:        env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:          env.Int("LLM_MAX_TOKENS", 6000),
		MaxContentChars:       env.Int("MAX_CONTENT_CHARS", 3000),
		FetchTimeout:          env.Duration("FETCH_TIMEOUT", 15*time.Second),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		RedditStealth:         envBool("REDDIT_STEALTH"),
		SourceRatePerSec:      env.Float("SOURCE_RATE_PER_SEC", 2),
		CacheMaxEntries:       env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval:  env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	bc, err := engine.NewBrowserClient(15, env.Str("WEBSHARE_API_KEY", ""))
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	if c.LLMAPIKey == "" {
		slog.Warn("LLM_API_KEY is not set, generation endpoints will fail")
	} else {
		c.LLM = engine.NewKitLLM(llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}),
		))
	}

	engine.Init(c)

	if path := env.Str("TONES_FILE", ""); path != "" {
		if err := engine.LoadTones(path); err != nil {
			slog.Warn("tone table load failed, using built-in", slog.String("path", path), slog.Any("error", err))
		}
	}

	sources.Register()

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(env.Str(key, "false"))
	return v
}
