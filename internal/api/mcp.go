package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/jobfill/internal/bridge"
	"github.com/kalambet/jobfill/internal/profile"
	"github.com/kalambet/jobfill/internal/storage"
)

const recentRunsLimit = 10

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   *storage.Store
	Profile *profile.Manager
	Bridge  *bridge.Bridge
}

// NewMCPServer creates an MCP server with all jobfill tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"jobfill",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("jobfill fills job-application forms from the stored applicant profile."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("fill_form",
			mcp.WithDescription("Fill the application form in an HTML page with the stored profile and return the filled page."),
			mcp.WithString("html", mcp.Description("The HTML page containing the form"), mcp.Required()),
			mcp.WithString("source", mcp.Description("Where the page came from, recorded in the run history")),
		),
		mcpFillForm(deps),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Return the stored applicant profile."),
		),
		mcpGetProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("set_profile_field",
			mcp.WithDescription("Update a single applicant profile field."),
			mcp.WithString("key", mcp.Description("Profile key: "+strings.Join(profile.Keys(), ", ")), mcp.Required()),
			mcp.WithString("value", mcp.Description("Value to set"), mcp.Required()),
		),
		mcpSetProfileField(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"user://profile",
			"Applicant Profile",
			mcp.WithResourceDescription("Current applicant profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"user://runs",
			"Recent Fill Runs",
			mcp.WithResourceDescription("Last 10 recorded form fills"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRuns(deps),
	)

	return s
}

func mcpFillForm(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, err := req.RequireString("html")
		if err != nil {
			return mcpError("html is required"), nil
		}
		source := req.GetString("source", "mcp")

		resp, err := deps.Bridge.FillForm(ctx, page, source)
		if err != nil {
			return mcpError(bridge.StatusLine(nil, err)), nil
		}

		b, err := json.Marshal(resp)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Profile.GetProfile())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSetProfileField(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcpError("value is required"), nil
		}

		if err := deps.Profile.SetField(key, value); err != nil {
			if errors.Is(err, profile.ErrUnknownField) {
				return mcpError(fmt.Sprintf("unknown profile key %q (valid: %s)", key, strings.Join(profile.Keys(), ", "))), nil
			}
			return mcpError(fmt.Sprintf("failed to set profile field: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Set %s = %s", key, value)), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Profile.GetProfile())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceRuns(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		runs, err := deps.Store.ListFillRuns(recentRunsLimit, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if runs == nil {
			runs = []storage.FillRun{}
		}

		b, err := json.Marshal(runs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal runs: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
