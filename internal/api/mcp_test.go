package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/jobfill/internal/bridge"
	"github.com/kalambet/jobfill/internal/profile"
	"github.com/kalambet/jobfill/internal/storage"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	app := newTestAppDeps(t)
	return MCPDeps{Store: app.Store, Profile: app.Profile, Bridge: app.Bridge}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestNewMCPServer(t *testing.T) {
	if s := NewMCPServer(newTestMCPDeps(t)); s == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}

func TestMCPTool_FillForm(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpFillForm(deps)

	result, err := handler(context.Background(), makeCallToolRequest("fill_form", map[string]interface{}{
		"html": testPage,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	var resp bridge.FillResponse
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got := strings.Join(resp.FilledFields, ","); got != "Name,Email" {
		t.Errorf("FilledFields = %q", got)
	}

	run, err := deps.Store.GetFillRun(resp.RunID)
	if err != nil {
		t.Fatalf("GetFillRun: %v", err)
	}
	if run.Source != "mcp" {
		t.Errorf("Source = %q, want mcp", run.Source)
	}
}

func TestMCPTool_FillForm_MissingHTML(t *testing.T) {
	handler := mcpFillForm(newTestMCPDeps(t))

	result, err := handler(context.Background(), makeCallToolRequest("fill_form", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing html")
	}
}

func TestMCPTool_GetProfile(t *testing.T) {
	handler := mcpGetProfile(newTestMCPDeps(t))

	result, err := handler(context.Background(), makeCallToolRequest("get_profile", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(toolText(t, result)), &p); err != nil {
		t.Fatalf("failed to parse profile: %v", err)
	}
	if p != profile.Default() {
		t.Errorf("profile = %+v, want default", p)
	}
}

func TestMCPTool_SetProfileField(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpSetProfileField(deps)

	result, err := handler(context.Background(), makeCallToolRequest("set_profile_field", map[string]interface{}{
		"key":   "location",
		"value": "Melbourne, VIC",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if text := toolText(t, result); text != "Set location = Melbourne, VIC" {
		t.Fatalf("unexpected response: %s", text)
	}
	if p := deps.Profile.GetProfile(); p.Location != "Melbourne, VIC" {
		t.Errorf("Location = %q", p.Location)
	}
}

func TestMCPTool_SetProfileField_UnknownKey(t *testing.T) {
	handler := mcpSetProfileField(newTestMCPDeps(t))

	result, err := handler(context.Background(), makeCallToolRequest("set_profile_field", map[string]interface{}{
		"key":   "shoeSize",
		"value": "42",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if !strings.Contains(toolText(t, result), "visaStatus") {
		t.Errorf("error should list valid keys: %s", toolText(t, result))
	}
}

func TestMCPResource_Profile(t *testing.T) {
	deps := newTestMCPDeps(t)
	deps.Profile.SetField("github", "janedoe")

	contents, err := mcpResourceProfile(deps)(context.Background(), makeReadResourceRequest("user://profile"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.URI != "user://profile" || tc.MIMEType != "application/json" {
		t.Errorf("resource meta = %q %q", tc.URI, tc.MIMEType)
	}
	if !strings.Contains(tc.Text, `"github":"janedoe"`) {
		t.Errorf("profile text = %s", tc.Text)
	}
}

func TestMCPResource_Runs(t *testing.T) {
	deps := newTestMCPDeps(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < recentRunsLimit+2; i++ {
		err := deps.Store.SaveFillRun(storage.FillRun{
			ID:        "run-" + string(rune('a'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	contents, err := mcpResourceRuns(deps)(context.Background(), makeReadResourceRequest("user://runs"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc := contents[0].(mcp.TextResourceContents)

	var runs []storage.FillRun
	if err := json.Unmarshal([]byte(tc.Text), &runs); err != nil {
		t.Fatalf("failed to parse runs: %v", err)
	}
	if len(runs) != recentRunsLimit {
		t.Errorf("len(runs) = %d, want %d", len(runs), recentRunsLimit)
	}
	if runs[0].ID != "run-l" {
		t.Errorf("newest run = %q, want run-l", runs[0].ID)
	}
}

func TestMCPResource_Runs_Empty(t *testing.T) {
	deps := newTestMCPDeps(t)

	contents, err := mcpResourceRuns(deps)(context.Background(), makeReadResourceRequest("user://runs"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc := contents[0].(mcp.TextResourceContents); tc.Text != "[]" {
		t.Errorf("text = %q, want []", tc.Text)
	}
}
