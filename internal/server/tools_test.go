package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_evict",
		"patch_plan",
		"patch_extract",
		"patch_overlay",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	// Check all expected tools exist
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			// Name should not be empty
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}

			// Description should not be empty
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			// InputSchema should exist
			if tool.InputSchema == nil {
				t.Error("Tool InputSchema is nil")
			}

			// InputSchema should be an object type
			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			// InputSchema should have properties
			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		if tool.Name == "image_evict" {
			// The path is optional: without it the whole cache is cleared
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			requiredList, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			hasPath := false
			for _, r := range requiredList {
				if r == "path" {
					hasPath = true
					break
				}
			}

			if !hasPath {
				t.Error("Tool should require 'path' parameter")
			}
		})
	}
}

func TestToolDefinitions_PatchSize(t *testing.T) {
	for _, name := range []string{"patch_plan", "patch_extract", "patch_overlay"} {
		t.Run(name, func(t *testing.T) {
			tool := findTool(t, name)

			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("required should be a string slice")
			}

			expectedRequired := map[string]bool{"path": true, "width": true, "height": true}
			for _, r := range required {
				delete(expectedRequired, r)
			}
			for missing := range expectedRequired {
				t.Errorf("%s should require '%s' parameter", name, missing)
			}

			props := tool.InputSchema["properties"].(map[string]interface{})
			methodProp, ok := props["method"].(map[string]interface{})
			if !ok {
				t.Fatal("method property should exist and be a map")
			}
			enum, _ := methodProp["enum"].([]string)
			want := []string{"uniform", "random", "grid", "origins"}
			if len(enum) != len(want) {
				t.Fatalf("method enum: got %v, want %v", enum, want)
			}
			for i := range want {
				if enum[i] != want[i] {
					t.Errorf("method enum[%d]: got %s, want %s", i, enum[i], want[i])
				}
			}
		})
	}
}

func TestToolDefinitions_Payloads(t *testing.T) {
	tool := findTool(t, "patch_extract")

	props := tool.InputSchema["properties"].(map[string]interface{})
	payload, ok := props["payload"].(map[string]interface{})
	if !ok {
		t.Fatal("payload property should exist and be a map")
	}

	enumMap := make(map[string]bool)
	for _, e := range payload["enum"].([]string) {
		enumMap[e] = true
	}
	for _, p := range []string{"png", "tensor", "luminance", "color", "edges", "ocr"} {
		if !enumMap[p] {
			t.Errorf("Expected payload '%s' not in enum", p)
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"patch_plan":    {"method": "uniform"},
		"patch_extract": {"payload": "png", "format": "nrgba", "normalize": "imagenet", "color_count": 5, "low_threshold": 50, "high_threshold": 150, "language": "eng", "min_confidence": 0.0},
		"patch_overlay": {"show_index": true, "color": "#FF000080"},
	}

	for toolName, expectedDefaults := range toolDefaults {
		tool := findTool(t, toolName)

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}
			if actualDefault != expectedDefault {
				t.Errorf("%s.%s: default got %v (%T), want %v (%T)",
					toolName, paramName, actualDefault, actualDefault, expectedDefault, expectedDefault)
			}
		}
	}
}

// findTool returns the named tool definition
func findTool(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("%s tool not found", name)
	return Tool{}
}

func TestHandleToolsList(t *testing.T) {
	s := New(Config{})
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	tools, ok := result["tools"]
	if !ok {
		t.Fatal("Result should contain 'tools' key")
	}

	toolsList, ok := tools.([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}

func TestToolStruct(t *testing.T) {
	tool := Tool{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"param1": map[string]interface{}{
					"type":        "string",
					"description": "A test parameter",
				},
			},
			"required": []string{"param1"},
		},
	}

	if tool.Name != "test_tool" {
		t.Errorf("Name: got %s, want test_tool", tool.Name)
	}
	if tool.Description != "A test tool" {
		t.Errorf("Description: got %s, want 'A test tool'", tool.Description)
	}
	if tool.InputSchema == nil {
		t.Error("InputSchema should not be nil")
	}
}
