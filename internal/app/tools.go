package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the stockbot server version. Use this to verify connectivity."),
	)
}

// createAnalyzeStockTool returns the analyze_stock tool definition
func createAnalyzeStockTool() mcp.Tool {
	return mcp.NewTool("analyze_stock",
		mcp.WithDescription("Compute performance, revenue growth, RSI and valuation metrics for a ticker and return them with an AI-written analysis."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol (e.g., 'AAPL', or 'BHP.AU' for a non-US listing)"),
		),
	)
}

// createSearchStocksTool returns the search_stocks tool definition
func createSearchStocksTool() mcp.Tool {
	return mcp.NewTool("search_stocks",
		mcp.WithDescription("Resolve a company name or partial symbol to a single listed ticker with its exchange, sector and industry."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Company name or ticker fragment (e.g., 'Apple', 'MSFT')"),
		),
	)
}
