// Package toolserver exposes the research pipelines as MCP tools.
package toolserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 6

// RegisterTools registers all research tools on the given MCP server:
// topics_generate, script_generate, research_run, history_list, history_get, render_markup.
func RegisterTools(server *mcp.Server) {
	registerTopics(server)
	registerScript(server)
	registerResearch(server)
	registerHistoryList(server)
	registerHistoryGet(server)
	registerRender(server)
}
