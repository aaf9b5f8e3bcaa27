package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/config"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/detector"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/discovery"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/executor"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/gitinfo"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/history"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/probe"
	"github.com/ch1kim0n1/HackSentinel/internal/application"
	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// registerTools registers all sentinel MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. sentinel_analyze
	s.AddTool(
		mcplib.NewTool("sentinel_analyze",
			mcplib.WithDescription("Run full bug discovery against the project: execute every entry point under time budgets and return the classified findings as JSON"),
			mcplib.WithBoolean("safe_mode", mcplib.Description("Only discover entry points, execute nothing")),
			mcplib.WithNumber("timeout_seconds", mcplib.Description("Global deadline in seconds (default 120)")),
		),
		handleAnalyze(projectPath),
	)

	// 2. sentinel_detect
	s.AddTool(
		mcplib.NewTool("sentinel_detect",
			mcplib.WithDescription("Detect the project type of the directory from its marker files"),
		),
		handleDetect(projectPath),
	)

	// 3. sentinel_entry_points
	s.AddTool(
		mcplib.NewTool("sentinel_entry_points",
			mcplib.WithDescription("List the runnable entry points sentinel would execute, without running any of them"),
		),
		handleEntryPoints(projectPath),
	)
}

// newAnalyzeService wires the standard set of outbound adapters.
func newAnalyzeService(ports []int) *application.AnalyzeService {
	runner := executor.New()
	runner.Prober = probe.New()
	runner.Ports = ports

	return application.NewAnalyzeService(
		detector.New(),
		discovery.New(),
		runner,
		gitinfo.New(),
		history.New(),
		nil,
	)
}

func handleAnalyze(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		if safeMode, _ := request.GetArguments()["safe_mode"].(bool); safeMode {
			cfg.SafeMode = true
		}
		if secs, _ := request.GetArguments()["timeout_seconds"].(float64); secs > 0 {
			cfg.GlobalDeadline = time.Duration(secs * float64(time.Second))
		}

		result, err := newAnalyzeService(cfg.Ports).Analyze(ctx, projectPath, cfg)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleDetect(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		detection, err := detector.New().Detect(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("detection failed: %v", err)), nil
		}
		return jsonResult(detection)
	}
}

func handleEntryPoints(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		det := detector.New()
		detection, err := det.Detect(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("detection failed: %v", err)), nil
		}

		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		disc, err := discovery.New().Discover(projectPath, detection, cfg.ExcludePatterns)
		if err != nil {
			return errorResult(fmt.Sprintf("discovery failed: %v", err)), nil
		}
		return jsonResult(struct {
			ProjectType domain.ProjectType  `json:"project_type"`
			EntryPoints []domain.EntryPoint `json:"entry_points"`
			Warnings    []string            `json:"warnings,omitempty"`
			Excluded    int                 `json:"excluded,omitempty"`
		}{detection.Type, disc.EntryPoints, disc.Warnings, disc.Excluded})
	}
}

// jsonResult marshals v as indented JSON into a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
