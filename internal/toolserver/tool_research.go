package toolserver

import (
	"context"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTopics(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "topics_generate",
		Description: "Research what is trending for a prompt or content category on YouTube, Reddit, Hacker News and the web, then generate numbered YouTube video titles. Returns the titles, the research context used (pass it to script_generate as context_snapshot) and the search keywords. Either prompt or category is required.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TopicsRequest) (*mcp.CallToolResult, *engine.TopicsResult, error) {
		out, err := engine.RunTopics(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}

func registerScript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "script_generate",
		Description: "Write a full YouTube script for a topic in the script dialect: [SECTION] labels, optional [B-Roll: ...] and [TEXT: ...] cues. The script is stored in history; the returned stored_record_id works with history_get.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ScriptRequest) (*mcp.CallToolResult, *engine.ScriptResult, error) {
		out, err := engine.RunScript(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}

func registerResearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "research_run",
		Description: "Run the full research pipeline for a prompt: plan searches, scrape YouTube, Reddit, Hacker News or the given target URLs, rank results by engagement, recency and keyword match, and write a script-style report. Stores the run in history. Set include_debug for total_scraped and per-source errors.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ResearchRequest) (*mcp.CallToolResult, *engine.ResearchResult, error) {
		out, err := engine.RunResearch(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		if !input.IncludeDebug {
			out.TotalScraped = nil
			out.Errors = nil
		}
		return nil, out, nil
	})
}
