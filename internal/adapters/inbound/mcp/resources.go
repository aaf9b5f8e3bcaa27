package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/config"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/history"
)

// registerResources registers all sentinel MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. sentinel://report - fresh analysis of the project
	s.AddResource(
		mcplib.NewResource(
			"sentinel://report",
			"Bug Report",
			mcplib.WithResourceDescription("Fresh bug-discovery run against the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(projectPath),
	)

	// 2. sentinel://history - past run summaries
	s.AddResource(
		mcplib.NewResource(
			"sentinel://history",
			"Run History",
			mcplib.WithResourceDescription("Summaries of previous bug-discovery runs for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)
}

func handleReportResource(projectPath string) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		result, err := newAnalyzeService(cfg.Ports).Analyze(ctx, projectPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "sentinel://report",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := history.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling history: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "sentinel://history",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
