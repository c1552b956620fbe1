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
		"image_edge_detect",
		"pie_locate_circle",
		"pie_segment",
		"pie_measure_radius",
		"pie_superpixels",
		"pie_paint",
		"pie_mask_load",
		"pie_crop_mask",
		"pie_calculate",
		"pie_simulate",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// every required parameter is declared
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for name, tool := range toolMap {
		if name == "pie_mask_load" {
			continue // path defaults to mask_path
		}
		t.Run(name, func(t *testing.T) {
			hasPath := false
			for _, r := range tool.InputSchema["required"].([]string) {
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

func TestToolDefinitions_SegmentRequiresRadius(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "pie_segment" && tool.Name != "pie_locate_circle" {
			continue
		}
		want := map[string]bool{"path": true, "radius": true, "radius_width": true}
		for _, r := range tool.InputSchema["required"].([]string) {
			delete(want, r)
		}
		for missing := range want {
			t.Errorf("%s should require '%s'", tool.Name, missing)
		}
	}
}

func TestToolDefinitions_PaintActions(t *testing.T) {
	var tool Tool
	for _, tt := range GetToolDefinitions() {
		if tt.Name == "pie_paint" {
			tool = tt
			break
		}
	}
	if tool.Name == "" {
		t.Fatal("pie_paint tool not found")
	}

	props := tool.InputSchema["properties"].(map[string]interface{})
	action, ok := props["action"].(map[string]interface{})
	if !ok {
		t.Fatal("action property should exist and be a map")
	}
	enum, ok := action["enum"].([]string)
	if !ok {
		t.Fatal("action should have enum")
	}

	enumMap := make(map[string]bool)
	for _, e := range enum {
		enumMap[e] = true
	}
	for _, a := range []string{"add", "remove", "fill", "undo", "clear"} {
		if !enumMap[a] {
			t.Errorf("Expected action '%s' not in enum", a)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

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
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
