package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/interfaces"
	"github.com/bobmcallan/stockbot/internal/models"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(common.GetVersionInfo())
		if err != nil {
			return errorResult(fmt.Sprintf("Error encoding version: %v", err)), nil
		}
		return textResult(string(data)), nil
	}
}

// handleAnalyzeStock implements the analyze_stock tool
func handleAnalyzeStock(svc interfaces.InsightService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		analysis, err := svc.FetchInsights(ctx, ticker)
		if err != nil {
			if errors.Is(err, models.ErrStockNotFound) {
				return errorResult(fmt.Sprintf("Stock not found: %s", strings.ToUpper(ticker))), nil
			}
			logger.Error().Err(err).Str("ticker", ticker).Msg("Analyze stock failed")
			return errorResult(fmt.Sprintf("Error analyzing stock: %v", err)), nil
		}

		return textResult(formatStockAnalysis(strings.ToUpper(strings.TrimSpace(ticker)), analysis)), nil
	}
}

// handleSearchStocks implements the search_stocks tool
func handleSearchStocks(r interfaces.TickerResolver, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return errorResult("Error: query parameter is required"), nil
		}

		match, err := r.Resolve(ctx, query)
		if err != nil {
			if errors.Is(err, models.ErrTickerNotFound) {
				return errorResult(fmt.Sprintf("No stock found matching %q", query)), nil
			}
			logger.Error().Err(err).Str("query", query).Msg("Search stocks failed")
			return errorResult(fmt.Sprintf("Error searching stocks: %v", err)), nil
		}

		return textResult(formatTickerMatch(match)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
