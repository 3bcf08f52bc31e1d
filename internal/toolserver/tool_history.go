package toolserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/anatolykoptev/go_dyut/internal/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type HistoryListInput struct{}

// HistoryListOutput and engine.Record carry timestamps, so the history tools
// declare untyped outputs and skip output schema inference.
type HistoryListOutput struct {
	History []engine.Summary `json:"history"`
}

type HistoryGetInput struct {
	ID string `json:"id" jsonschema:"Record ID returned by script_generate or research_run"`
}

type RenderInput struct {
	Text string `json:"text" jsonschema:"Markdown report or script text"`
	As   string `json:"as,omitempty" jsonschema:"Renderer: markdown (default), markdown-safe or script"`
}

type RenderOutput struct {
	Kind string `json:"kind"`
	HTML string `json:"html"`
}

var errNoHistory = errors.New("history store is not configured")

func registerHistoryList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_list",
		Description: "List stored research and script runs, newest first: id, created_at, prompt (or script topic), category, num_results, total_scraped.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ HistoryListInput) (*mcp.CallToolResult, any, error) {
		h := engine.History()
		if h == nil {
			return nil, nil, errNoHistory
		}
		list, err := h.List(ctx)
		if err != nil {
			return nil, nil, err
		}
		if list == nil {
			list = []engine.Summary{}
		}
		return nil, HistoryListOutput{History: list}, nil
	})
}

func registerHistoryGet(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_get",
		Description: "Fetch one stored run by id with its inputs, plan, ranked results, report or script text and scrape errors.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryGetInput) (*mcp.CallToolResult, any, error) {
		if input.ID == "" {
			return nil, nil, engine.ValidationError("id is required")
		}
		h := engine.History()
		if h == nil {
			return nil, nil, errNoHistory
		}
		rec, err := h.Get(ctx, input.ID)
		if err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				return nil, nil, errors.New(engine.ErrorDetail(err))
			}
			return nil, nil, err
		}
		return nil, rec, nil
	})
}

func registerRender(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_markup",
		Description: "Render a markdown report or a script into an HTML fragment. markdown passes raw HTML through, markdown-safe escapes and sanitizes, script highlights [SECTION], [B-Roll: ...] and [TEXT: ...] cues.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, RenderOutput, error) {
		kind, err := render.ParseKind(input.As)
		if err != nil {
			return nil, RenderOutput{}, err
		}
		return nil, RenderOutput{Kind: string(kind), HTML: render.Render(kind, input.Text)}, nil
	})
}
